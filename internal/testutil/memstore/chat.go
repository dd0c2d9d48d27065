package memstore

import (
	"context"
	"sort"
	"time"

	"servibid/internal/domain/entity"
	"servibid/pkg/errors"
)

// ---- chats

type chatRepo struct{ s *Store }

func (r chatRepo) FindOrCreate(ctx context.Context, customerID, providerID string) (*entity.Chat, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := entity.PairKey(customerID, providerID)
	if chatID, ok := r.s.chatPairs[key]; ok {
		return copyChat(r.s.chats[chatID]), false, nil
	}

	now := r.s.now()
	chat := &entity.Chat{
		ID:              newID(""),
		CustomerID:      customerID,
		ProviderID:      providerID,
		Participants:    []string{customerID, providerID},
		LastMessage:     entity.ChatStartedMessage,
		LastMessageType: entity.MessageTypeText,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.s.chats[chat.ID] = chat
	r.s.chatPairs[key] = chat.ID
	return copyChat(chat), true, nil
}

func (r chatRepo) FindByPair(ctx context.Context, customerID, providerID string) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chatID, ok := r.s.chatPairs[entity.PairKey(customerID, providerID)]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return copyChat(r.s.chats[chatID]), nil
}

func (r chatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chat, ok := r.s.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return copyChat(chat), nil
}

func (r chatRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chats := make([]*entity.Chat, 0)
	for _, chat := range r.s.chats {
		if chat.HasParticipant(userID) {
			chats = append(chats, copyChat(chat))
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt.After(chats[j].UpdatedAt) })
	return chats, nil
}

func (r chatRepo) UpdateLastMessage(ctx context.Context, chatID, text, messageType string, at time.Time) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chat, ok := r.s.chats[chatID]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	if at.Before(chat.UpdatedAt) {
		return copyChat(chat), nil
	}
	chat.LastMessage = text
	chat.LastMessageType = messageType
	chat.UpdatedAt = at
	return copyChat(chat), nil
}

// ---- messages

type messageRepo struct{ s *Store }

func (r messageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	message.ID = newID(message.ID)
	if message.CreatedAt.IsZero() {
		message.CreatedAt = r.s.now()
	}
	c := *message
	r.s.messages[message.ID] = &c
	return nil
}

func (r messageRepo) ListByChat(ctx context.Context, chatID string) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	messages := make([]*entity.Message, 0)
	for _, message := range r.s.messages {
		if message.ChatID == chatID {
			c := *message
			messages = append(messages, &c)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages, nil
}

func (r messageRepo) CountUnread(ctx context.Context, chatID, receiverID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, message := range r.s.messages {
		if message.ChatID == chatID && message.ReceiverID == receiverID && !message.Seen {
			count++
		}
	}
	return count, nil
}

func (r messageRepo) MarkSeen(ctx context.Context, messageIDs []string, userID string) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	changed := make([]*entity.Message, 0)
	for _, id := range messageIDs {
		message, ok := r.s.messages[id]
		if !ok || message.ReceiverID != userID || message.Seen {
			continue
		}
		message.Seen = true
		c := *message
		changed = append(changed, &c)
	}
	return changed, nil
}

// ---- notifications

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	notification.ID = newID(notification.ID)
	notification.CreatedAt = r.s.now()
	c := *notification
	r.s.notifications[notification.ID] = &c
	return nil
}

func (r notificationRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	notifications := make([]*entity.Notification, 0)
	for _, notification := range r.s.notifications {
		if notification.UserID == userID {
			c := *notification
			notifications = append(notifications, &c)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r notificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	updated := 0
	for _, notification := range r.s.notifications {
		if notification.UserID == userID && !notification.Read {
			notification.Read = true
			updated++
		}
	}
	return updated, nil
}
