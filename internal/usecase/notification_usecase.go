package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
	"servibid/pkg/metrics"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	publisher        EventPublisher
	log              zerolog.Logger
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, publisher EventPublisher) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		log:              logger.WithComponent("notifications"),
	}
}

type NotifyInput struct {
	Role    string
	UserID  string
	Type    string
	Message string
	Meta    map[string]interface{}
}

// Notify stores the notification and then pushes it to the recipient's
// personal room. The push never fails the call.
func (uc *NotificationUseCase) Notify(ctx context.Context, input NotifyInput) (*entity.Notification, error) {
	notification := &entity.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Message: input.Message,
		Meta:    input.Meta,
	}
	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(input.Type).Inc()

	uc.push(input.Role, input.UserID, EventNotification, notification)
	return notification, nil
}

// NotifyQuietly is Notify for side effects: failures are logged and dropped.
func (uc *NotificationUseCase) NotifyQuietly(ctx context.Context, input NotifyInput) {
	if _, err := uc.Notify(ctx, input); err != nil {
		uc.log.Error().Err(err).Str("user", input.UserID).Str("type", input.Type).Msg("failed to create notification")
	}
}

// Push sends a live event without storing anything.
func (uc *NotificationUseCase) Push(role, userID, event string, data interface{}) {
	uc.push(role, userID, event, data)
}

func (uc *NotificationUseCase) push(role, userID, event string, data interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishToUser(role, userID, event, data); err != nil {
		uc.log.Warn().Err(err).Str("user", userID).Str("event", event).Msg("push failed")
	}
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string) ([]*entity.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.Validation("Invalid user id")
	}
	return uc.notificationRepo.ListByUser(ctx, userID)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, errors.Validation("Invalid user id")
	}
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}
