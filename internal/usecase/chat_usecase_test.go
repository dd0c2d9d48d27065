package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servibid/internal/domain/entity"
	"servibid/internal/infrastructure/ratelimit"
	"servibid/pkg/errors"
)

func TestGetOrCreateChatIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")

	first, created, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.ChatStartedMessage, first.LastMessage)

	second, created, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.ChatCount())

	pushed := f.publisher.find("provider:p1", EventNewChat)
	require.Len(t, pushed, 1, "newChat is pushed only on creation")
	summary := pushed[0].Data.(*entity.ChatSummary)
	assert.Equal(t, "c1", summary.OtherParticipant.ID)
	assert.Equal(t, "Customer c1", summary.OtherParticipant.Name)
	assert.Len(t, f.publisher.find("customer:c1", EventNewChat), 1)
}

func TestGetOrCreateChatConcurrent(t *testing.T) {
	f := newFixture()
	f.customer(t, "c1")
	f.provider(t, "p1")

	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chat, _, err := f.chats.GetOrCreateChat(context.Background(), "c1", "p1")
			if assert.NoError(t, err) {
				ids[i] = chat.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, f.store.ChatCount())
}

func TestGetOrCreateChatMissingParticipant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")

	_, _, err := f.chats.GetOrCreateChat(ctx, "c1", "ghost")
	assert.True(t, errors.Is(err, errors.CodeParticipantNotFound))

	_, _, err = f.chats.GetOrCreateChat(ctx, "", "p1")
	assert.True(t, errors.Is(err, errors.CodeValidation))
	assert.Equal(t, 0, f.store.ChatCount())
}

func TestSendMessage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)

	message, err := f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "<script>x()</script><b>hello</b>"})
	require.NoError(t, err)
	assert.Equal(t, "hello", message.Text)
	assert.Equal(t, "p1", message.ReceiverID)
	assert.Equal(t, entity.MessageTypeText, message.Type)

	assert.Len(t, f.publisher.find(chat.ID, EventNewMessage), 1)
	assert.Len(t, f.notificationsOf(t, "p1", entity.NotificationNewMessage), 1)

	updates := f.publisher.find("provider:p1", EventChatUpdate)
	require.NotEmpty(t, updates)
	update := updates[len(updates)-1].Data.(ChatUpdate)
	assert.Equal(t, int64(1), update.UnreadCount)
	assert.Equal(t, "hello", update.LastMessage)

	mine := f.publisher.find("customer:c1", EventChatUpdate)
	require.NotEmpty(t, mine)
	assert.Equal(t, int64(0), mine[len(mine)-1].Data.(ChatUpdate).UnreadCount)
}

func TestLastMessageOnlyMovesForward(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)

	first, err := f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "first"})
	require.NoError(t, err)
	second, err := f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "p1", Text: "second"})
	require.NoError(t, err)
	require.True(t, first.CreatedAt.Before(second.CreatedAt))

	// The write for the older message lands after the newer one.
	stale, err := f.store.Chats().UpdateLastMessage(ctx, chat.ID, first.Text, first.Type, first.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, "second", stale.LastMessage)
	assert.Equal(t, second.CreatedAt, stale.UpdatedAt)

	stored, err := f.store.Chats().GetByID(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", stored.LastMessage)

	_, err = f.store.Chats().UpdateLastMessage(ctx, "missing", "x", entity.MessageTypeText, second.CreatedAt)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestSendMessageAttachment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)

	message, err := f.chats.SendMessage(ctx, SendMessageInput{
		ChatID: chat.ID, SenderID: "p1", FileURL: "https://cdn/x.m4a", FileType: "audio/mp4", Duration: 3.5,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MessageTypeAudio, message.Type)
	assert.Equal(t, "c1", message.ReceiverID)

	stored, err := f.store.Chats().GetByID(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LastMessageAttachment, stored.LastMessage)
}

func TestSendMessageRejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)

	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, Text: "hi"})
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "intruder", Text: "hi"})
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "<i></i>  "})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: "missing", SenderID: "c1", Text: "hi"})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestSendMessageRateLimited(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	f.chats.limiter = ratelimit.NewRateLimiter(map[string]ratelimit.Policy{
		ratelimit.ActionSendMessage: ratelimit.PerMinute(2),
	})
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "hi"})
		require.NoError(t, err)
	}
	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "hi"})
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))

	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "p1", Text: "hi"})
	assert.NoError(t, err)
}

func TestUnreadCountFollowsSeenMarks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 5; i++ {
		m, err := f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "ping"})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	unread, err := f.chats.UnreadCount(ctx, chat.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), unread)

	changed, err := f.chats.MarkMessagesSeen(ctx, ids[:2], "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, changed, "only the receiver can mark messages seen")

	changed, err = f.chats.MarkMessagesSeen(ctx, ids[:2], "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	unread, _ = f.chats.UnreadCount(ctx, chat.ID, "p1")
	assert.Equal(t, int64(3), unread)

	_, err = f.chats.MarkMessagesSeen(ctx, ids, "p1")
	require.NoError(t, err)
	unread, _ = f.chats.UnreadCount(ctx, chat.ID, "p1")
	assert.Equal(t, int64(0), unread)

	_, err = f.chats.MarkMessagesSeen(ctx, nil, "p1")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestListChatsForUserShowsUnread(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.customer(t, "c2")
	f.provider(t, "p1")

	older, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)
	newer, _, err := f.chats.GetOrCreateChat(ctx, "c2", "p1")
	require.NoError(t, err)

	first, err := f.chats.SendMessage(ctx, SendMessageInput{ChatID: older.ID, SenderID: "c1", Text: "one"})
	require.NoError(t, err)
	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: older.ID, SenderID: "c1", Text: "two"})
	require.NoError(t, err)
	_, err = f.chats.MarkMessagesSeen(ctx, []string{first.ID}, "p1")
	require.NoError(t, err)

	summaries, err := f.chats.ListChatsForUser(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, older.ID, summaries[0].ID, "most recently active first")
	assert.Equal(t, int64(1), summaries[0].UnreadCount)
	assert.Equal(t, "c1", summaries[0].OtherParticipant.ID)
	assert.Equal(t, entity.RoleCustomer, summaries[0].OtherParticipant.Role)
	assert.Equal(t, newer.ID, summaries[1].ID)
	assert.Equal(t, int64(0), summaries[1].UnreadCount)
}

func TestListMessagesAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)
	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "first"})
	require.NoError(t, err)
	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "p1", Text: "second"})
	require.NoError(t, err)

	messages, err := f.chats.ListMessages(ctx, chat.ID, "p1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)

	_, err = f.chats.ListMessages(ctx, chat.ID, "")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
	_, err = f.chats.ListMessages(ctx, chat.ID, "someone")
	assert.True(t, errors.Is(err, errors.CodeForbidden))
	_, err = f.chats.ListMessages(ctx, "missing", "p1")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	assert.True(t, f.chats.CanJoinChat(ctx, "c1", chat.ID))
	assert.False(t, f.chats.CanJoinChat(ctx, "someone", chat.ID))
}

func TestFindExistingChatNeverCreates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")

	_, err := f.chats.FindExistingChat(ctx, "c1", "p1")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.Equal(t, 0, f.store.ChatCount())

	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)
	found, err := f.chats.FindExistingChat(ctx, "p1", "c1")
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID)
}

func TestScenarioUnreadAfterPartialSeen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1")
	chat, _, err := f.chats.GetOrCreateChat(ctx, "c1", "p1")
	require.NoError(t, err)

	first, err := f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "Is tomorrow fine?"})
	require.NoError(t, err)
	_, err = f.chats.SendMessage(ctx, SendMessageInput{ChatID: chat.ID, SenderID: "c1", Text: "Around 10am"})
	require.NoError(t, err)
	_, err = f.chats.MarkMessagesSeen(ctx, []string{first.ID}, "p1")
	require.NoError(t, err)

	summaries, err := f.chats.ListChatsForUser(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)
	assert.Equal(t, "Around 10am", summaries[0].LastMessage)
}
