package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

// chatPair is the uniqueness index for a participant pair, keyed by entity.PairKey.
type chatPair struct {
	ChatID string `firestore:"chatId"`
}

type firestoreChatRepository struct {
	firestoreBase
}

func NewFirestoreChatRepository(client *firestore.Client, timeout time.Duration) repository.ChatRepository {
	return &firestoreChatRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreChatRepository) FindOrCreate(ctx context.Context, customerID, providerID string) (*entity.Chat, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pairRef := r.client.Collection(chatPairsCollection).Doc(entity.PairKey(customerID, providerID))

	var chat *entity.Chat
	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		chat, created = nil, false

		pairDoc, err := tx.Get(pairRef)
		if err == nil {
			var pair chatPair
			if err := pairDoc.DataTo(&pair); err != nil {
				return err
			}
			chatDoc, err := tx.Get(r.client.Collection(chatsCollection).Doc(pair.ChatID))
			if err != nil {
				return err
			}
			var existing entity.Chat
			if err := chatDoc.DataTo(&existing); err != nil {
				return err
			}
			chat = &existing
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		now := time.Now()
		chat = &entity.Chat{
			ID:              uuid.New().String(),
			CustomerID:      customerID,
			ProviderID:      providerID,
			Participants:    []string{customerID, providerID},
			LastMessage:     entity.ChatStartedMessage,
			LastMessageType: entity.MessageTypeText,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		created = true

		if err := tx.Create(pairRef, chatPair{ChatID: chat.ID}); err != nil {
			return err
		}
		return tx.Create(r.client.Collection(chatsCollection).Doc(chat.ID), chat)
	})
	if err != nil {
		return nil, false, storageError("Failed to resolve chat", err)
	}
	return chat, created, nil
}

func (r *firestoreChatRepository) FindByPair(ctx context.Context, customerID, providerID string) (*entity.Chat, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pairDoc, err := r.client.Collection(chatPairsCollection).Doc(entity.PairKey(customerID, providerID)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, storageError("Failed to find chat", err)
	}

	var pair chatPair
	if err := pairDoc.DataTo(&pair); err != nil {
		return nil, errors.Internal("Failed to parse chat pair", err)
	}
	return r.GetByID(ctx, pair.ChatID)
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.client.Collection(chatsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, storageError("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	return &chat, nil
}

func (r *firestoreChatRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	chats, err := collect[entity.Chat](r.client.Collection(chatsCollection).
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list chats", err)
	}
	return chats, nil
}

func (r *firestoreChatRepository) UpdateLastMessage(ctx context.Context, chatID, text, messageType string, at time.Time) (*entity.Chat, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ref := r.client.Collection(chatsCollection).Doc(chatID)
	var chat *entity.Chat
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return errors.NotFound("Chat", err)
			}
			return err
		}
		var current entity.Chat
		if err := doc.DataTo(&current); err != nil {
			return err
		}
		chat = &current
		if at.Before(current.UpdatedAt) {
			return nil
		}

		current.LastMessage = text
		current.LastMessageType = messageType
		current.UpdatedAt = at
		return tx.Update(ref, []firestore.Update{
			{Path: "lastMessage", Value: text},
			{Path: "lastMessageType", Value: messageType},
			{Path: "updatedAt", Value: at},
		})
	})
	if err != nil {
		return nil, storageError("Failed to update chat", err)
	}
	return chat, nil
}

type firestoreMessageRepository struct {
	firestoreBase
}

func NewFirestoreMessageRepository(client *firestore.Client, timeout time.Duration) repository.MessageRepository {
	return &firestoreMessageRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if _, err := r.client.Collection(messagesCollection).Doc(message.ID).Set(ctx, message); err != nil {
		return storageError("Failed to create message", err)
	}
	return nil
}

func (r *firestoreMessageRepository) ListByChat(ctx context.Context, chatID string) ([]*entity.Message, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	messages, err := collect[entity.Message](r.client.Collection(messagesCollection).
		Where("chatId", "==", chatID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list messages", err)
	}
	return messages, nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, chatID, receiverID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.count(ctx, r.client.Collection(messagesCollection).
		Where("chatId", "==", chatID).
		Where("receiverId", "==", receiverID).
		Where("seen", "==", false))
	if err != nil {
		return 0, storageError("Failed to count unread messages", err)
	}
	return count, nil
}

func (r *firestoreMessageRepository) MarkSeen(ctx context.Context, messageIDs []string, userID string) ([]*entity.Message, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var changed []*entity.Message
	var refs []*firestore.DocumentRef
	for _, group := range chunk(messageIDs, 100) {
		groupRefs := make([]*firestore.DocumentRef, len(group))
		for i, id := range group {
			groupRefs[i] = r.client.Collection(messagesCollection).Doc(id)
		}

		docs, err := r.client.GetAll(ctx, groupRefs)
		if err != nil {
			return nil, storageError("Failed to load messages", err)
		}
		for _, doc := range docs {
			if doc == nil || !doc.Exists() {
				continue
			}
			var message entity.Message
			if err := doc.DataTo(&message); err != nil {
				return nil, errors.Internal("Failed to parse message data", err)
			}
			if message.ReceiverID != userID || message.Seen {
				continue
			}
			message.Seen = true
			changed = append(changed, &message)
			refs = append(refs, doc.Ref)
		}
	}

	if _, err := r.bulkUpdate(ctx, refs, []firestore.Update{{Path: "seen", Value: true}}); err != nil {
		return nil, storageError("Failed to mark messages seen", err)
	}
	return changed, nil
}
