package repository

import (
	"context"
	"time"

	"servibid/internal/domain/entity"
)

type ChatRepository interface {
	// FindOrCreate returns the chat for the unordered pair, creating it
	// atomically when absent. created reports whether this call inserted it.
	FindOrCreate(ctx context.Context, customerID, providerID string) (chat *entity.Chat, created bool, err error)
	FindByPair(ctx context.Context, customerID, providerID string) (*entity.Chat, error)
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	// ListByUser orders by updatedAt descending.
	ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error)
	// UpdateLastMessage records the latest message summary. A message older
	// than the chat's updatedAt leaves the chat unchanged.
	UpdateLastMessage(ctx context.Context, chatID, text, messageType string, at time.Time) (*entity.Chat, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListByChat orders by createdAt ascending.
	ListByChat(ctx context.Context, chatID string) ([]*entity.Message, error)
	CountUnread(ctx context.Context, chatID, receiverID string) (int64, error)
	// MarkSeen flags the given messages seen where receiverId is userID and
	// returns the messages that changed.
	MarkSeen(ctx context.Context, messageIDs []string, userID string) ([]*entity.Message, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	// ListByUser orders by createdAt descending.
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}
