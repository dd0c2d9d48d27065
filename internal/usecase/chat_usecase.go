package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/internal/infrastructure/ratelimit"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

type ChatUseCase struct {
	chatRepo     repository.ChatRepository
	messageRepo  repository.MessageRepository
	customerRepo repository.CustomerRepository
	providerRepo repository.ProviderRepository
	notifier     *NotificationUseCase
	publisher    EventPublisher
	limiter      ActionLimiter
	sanitizer    *bluemonday.Policy
	log          zerolog.Logger
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	customerRepo repository.CustomerRepository,
	providerRepo repository.ProviderRepository,
	notifier *NotificationUseCase,
	publisher EventPublisher,
	limiter ActionLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		customerRepo: customerRepo,
		providerRepo: providerRepo,
		notifier:     notifier,
		publisher:    publisher,
		limiter:      limiter,
		sanitizer:    bluemonday.StrictPolicy(),
		log:          logger.WithComponent("chat"),
	}
}

type SendMessageInput struct {
	ChatID   string
	SenderID string
	Text     string
	FileURL  string
	FileName string
	FileSize int64
	FileType string
	Duration float64
	Type     string
}

// ChatUpdate is pushed to a participant whenever their view of a chat changes.
type ChatUpdate struct {
	ChatID      string    `json:"chatId"`
	UnreadCount int64     `json:"unreadCount"`
	LastMessage string    `json:"last_message"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var messageTypes = map[string]bool{
	entity.MessageTypeText:  true,
	entity.MessageTypeFile:  true,
	entity.MessageTypeAudio: true,
	entity.MessageTypeImage: true,
	entity.MessageTypeVideo: true,
}

func (uc *ChatUseCase) allow(userID, action string) error {
	if uc.limiter == nil {
		return nil
	}
	if ok, wait := uc.limiter.Allow(userID, action); !ok {
		return errors.TooManyRequests(fmt.Sprintf("Too many requests, retry in %d seconds", int(math.Ceil(wait.Seconds()))))
	}
	return nil
}

// GetOrCreateChat returns the chat of a customer and provider pair, creating
// it on first use. created reports whether this call made it.
func (uc *ChatUseCase) GetOrCreateChat(ctx context.Context, customerID, providerID string) (*entity.Chat, bool, error) {
	customerID = strings.TrimSpace(customerID)
	providerID = strings.TrimSpace(providerID)
	if customerID == "" || providerID == "" || customerID == providerID {
		return nil, false, errors.Validation("Invalid customerId or providerId")
	}
	if err := uc.allow(customerID, ratelimit.ActionCreateChat); err != nil {
		return nil, false, err
	}

	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, false, errors.ParticipantNotFound("Customer not found")
		}
		return nil, false, err
	}
	provider, err := uc.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, false, errors.ParticipantNotFound("Provider not found")
		}
		return nil, false, err
	}

	chat, created, err := uc.chatRepo.FindOrCreate(ctx, customer.ID, provider.ID)
	if err != nil {
		return nil, false, err
	}

	if created {
		customerView := entity.Participant{ID: customer.ID, Name: customer.Name, Role: entity.RoleCustomer, Image: customer.Image}
		providerView := entity.Participant{ID: provider.ID, Name: provider.Name, Role: entity.RoleProvider, Image: provider.Image}
		uc.publishToUser(entity.RoleCustomer, customer.ID, EventNewChat, &entity.ChatSummary{Chat: chat, OtherParticipant: providerView})
		uc.publishToUser(entity.RoleProvider, provider.ID, EventNewChat, &entity.ChatSummary{Chat: chat, OtherParticipant: customerView})
	}
	return chat, created, nil
}

// FindExistingChat never creates a chat.
func (uc *ChatUseCase) FindExistingChat(ctx context.Context, customerID, providerID string) (*entity.Chat, error) {
	if customerID == "" || providerID == "" {
		return nil, errors.Validation("customerId and providerId are required")
	}
	return uc.chatRepo.FindByPair(ctx, customerID, providerID)
}

func (uc *ChatUseCase) participantChat(ctx context.Context, chatID, userID string) (*entity.Chat, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.Unauthorized("Missing user identity", nil)
	}
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}
	return chat, nil
}

func messageType(input SendMessageInput) string {
	if messageTypes[input.Type] && (input.Type != entity.MessageTypeText || input.FileURL == "") {
		return input.Type
	}
	if input.FileURL == "" {
		return entity.MessageTypeText
	}
	switch {
	case strings.HasPrefix(input.FileType, "image/"):
		return entity.MessageTypeImage
	case strings.HasPrefix(input.FileType, "audio/"):
		return entity.MessageTypeAudio
	case strings.HasPrefix(input.FileType, "video/"):
		return entity.MessageTypeVideo
	default:
		return entity.MessageTypeFile
	}
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	chat, err := uc.participantChat(ctx, input.ChatID, input.SenderID)
	if err != nil {
		return nil, err
	}
	if err := uc.allow(input.SenderID, ratelimit.ActionSendMessage); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(uc.sanitizer.Sanitize(input.Text))
	if text == "" && input.FileURL == "" {
		return nil, errors.Validation("Message must contain text or a file")
	}

	receiverID, receiverRole := chat.Other(input.SenderID)
	message := &entity.Message{
		ChatID:     chat.ID,
		SenderID:   input.SenderID,
		ReceiverID: receiverID,
		Text:       text,
		FileURL:    input.FileURL,
		FileName:   input.FileName,
		FileSize:   input.FileSize,
		FileType:   input.FileType,
		Duration:   input.Duration,
		Type:       messageType(input),
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	summary := text
	if summary == "" {
		summary = entity.LastMessageAttachment
	}
	updated, err := uc.chatRepo.UpdateLastMessage(ctx, chat.ID, summary, message.Type, message.CreatedAt)
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyQuietly(ctx, NotifyInput{
		Role:    receiverRole,
		UserID:  receiverID,
		Type:    entity.NotificationNewMessage,
		Message: "New message received",
		Meta:    map[string]interface{}{"chatId": chat.ID, "senderId": input.SenderID},
	})
	uc.publishToChat(chat.ID, EventNewMessage, message)
	uc.pushChatUpdates(ctx, updated)
	return message, nil
}

// ListMessages returns a chat's messages oldest first and refreshes both
// participants' unread counters.
func (uc *ChatUseCase) ListMessages(ctx context.Context, chatID, requesterID string) ([]*entity.Message, error) {
	chat, err := uc.participantChat(ctx, chatID, requesterID)
	if err != nil {
		return nil, err
	}
	messages, err := uc.messageRepo.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	uc.pushChatUpdates(ctx, chat)
	return messages, nil
}

// MarkMessagesSeen flags the messages addressed to userID as seen and returns
// how many changed.
func (uc *ChatUseCase) MarkMessagesSeen(ctx context.Context, messageIDs []string, userID string) (int, error) {
	if len(messageIDs) == 0 || strings.TrimSpace(userID) == "" {
		return 0, errors.Validation("Invalid request")
	}

	changed, err := uc.messageRepo.MarkSeen(ctx, messageIDs, userID)
	if err != nil {
		return 0, err
	}

	chats := make(map[string]bool)
	for _, message := range changed {
		chats[message.ChatID] = true
	}
	for chatID := range chats {
		chat, err := uc.chatRepo.GetByID(ctx, chatID)
		if err != nil {
			uc.log.Warn().Err(err).Str("chat", chatID).Msg("chat lookup failed after mark seen")
			continue
		}
		uc.pushChatUpdates(ctx, chat)
	}
	return len(changed), nil
}

func (uc *ChatUseCase) UnreadCount(ctx context.Context, chatID, userID string) (int64, error) {
	return uc.messageRepo.CountUnread(ctx, chatID, userID)
}

// ListChatsForUser returns the user's chats, most recently active first, each
// with the other participant and the user's unread count.
func (uc *ChatUseCase) ListChatsForUser(ctx context.Context, userID string) ([]*entity.ChatSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.Validation("Invalid user id")
	}
	chats, err := uc.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*entity.ChatSummary, len(chats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutWorkers)
	for i, chat := range chats {
		i, chat := i, chat
		g.Go(func() error {
			otherID, otherRole := chat.Other(userID)
			unread, err := uc.messageRepo.CountUnread(gctx, chat.ID, userID)
			if err != nil {
				return err
			}
			summaries[i] = &entity.ChatSummary{
				Chat:             chat,
				OtherParticipant: uc.participant(gctx, otherID, otherRole),
				UnreadCount:      unread,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// CanJoinChat authorizes chat room subscriptions on the push channel.
func (uc *ChatUseCase) CanJoinChat(ctx context.Context, userID, chatID string) bool {
	_, err := uc.participantChat(ctx, chatID, userID)
	return err == nil
}

// participant resolves a display summary. Missing accounts keep only the id.
func (uc *ChatUseCase) participant(ctx context.Context, id, role string) entity.Participant {
	view := entity.Participant{ID: id, Role: role}
	switch role {
	case entity.RoleCustomer:
		if customer, err := uc.customerRepo.GetByID(ctx, id); err == nil {
			view.Name, view.Image = customer.Name, customer.Image
		}
	case entity.RoleProvider:
		if provider, err := uc.providerRepo.GetByID(ctx, id); err == nil {
			view.Name, view.Image = provider.Name, provider.Image
		}
	}
	return view
}

func (uc *ChatUseCase) pushChatUpdates(ctx context.Context, chat *entity.Chat) {
	for _, side := range []struct{ id, role string }{
		{chat.CustomerID, entity.RoleCustomer},
		{chat.ProviderID, entity.RoleProvider},
	} {
		unread, err := uc.messageRepo.CountUnread(ctx, chat.ID, side.id)
		if err != nil {
			uc.log.Warn().Err(err).Str("chat", chat.ID).Msg("unread count failed")
			continue
		}
		uc.publishToUser(side.role, side.id, EventChatUpdate, ChatUpdate{
			ChatID:      chat.ID,
			UnreadCount: unread,
			LastMessage: chat.LastMessage,
			UpdatedAt:   chat.UpdatedAt,
		})
	}
}

func (uc *ChatUseCase) publishToUser(role, userID, event string, data interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishToUser(role, userID, event, data); err != nil {
		uc.log.Warn().Err(err).Str("user", userID).Str("event", event).Msg("push failed")
	}
}

func (uc *ChatUseCase) publishToChat(chatID, event string, data interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishToChat(chatID, event, data); err != nil {
		uc.log.Warn().Err(err).Str("chat", chatID).Str("event", event).Msg("push failed")
	}
}
