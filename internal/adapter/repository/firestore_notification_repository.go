package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
)

type firestoreNotificationRepository struct {
	firestoreBase
}

func NewFirestoreNotificationRepository(client *firestore.Client, timeout time.Duration) repository.NotificationRepository {
	return &firestoreNotificationRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()

	if _, err := r.client.Collection(notificationsCollection).Doc(notification.ID).Set(ctx, notification); err != nil {
		return storageError("Failed to create notification", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	notifications, err := collect[entity.Notification](r.client.Collection(notificationsCollection).
		Where("user", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list notifications", err)
	}
	return notifications, nil
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	refs, err := collectRefs(r.client.Collection(notificationsCollection).
		Where("user", "==", userID).
		Where("read", "==", false).
		Documents(ctx))
	if err != nil {
		return 0, storageError("Failed to list unread notifications", err)
	}

	updated, err := r.bulkUpdate(ctx, refs, []firestore.Update{{Path: "read", Value: true}})
	if err != nil {
		return updated, storageError("Failed to mark notifications read", err)
	}
	return updated, nil
}
