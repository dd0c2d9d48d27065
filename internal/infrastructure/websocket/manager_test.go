package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servibid/internal/infrastructure/ratelimit"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func next(t *testing.T, c *Client) (frame, bool) {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		if !ok {
			return frame{}, false
		}
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f, true
	default:
		return frame{}, false
	}
}

func newTestManager() *Manager {
	return NewManager(ratelimit.NewRateLimiter(nil))
}

func TestConnectJoinsPersonalRoom(t *testing.T) {
	m := newTestManager()
	c := NewClient("conn-1", "u1", "customer")
	m.Connect(c)

	require.NoError(t, m.PublishToUser("customer", "u1", EventNotification, map[string]string{"message": "hi"}))

	f, ok := next(t, c)
	require.True(t, ok)
	assert.Equal(t, EventNotification, f.Type)
	assert.JSONEq(t, `{"message":"hi"}`, string(f.Data))

	require.NoError(t, m.PublishToUser("provider", "u1", EventNotification, nil))
	_, ok = next(t, c)
	assert.False(t, ok, "role is part of the personal room key")
}

func TestPublishToChatReachesEveryConnection(t *testing.T) {
	m := newTestManager()
	phone := NewClient("conn-1", "u1", "customer")
	laptop := NewClient("conn-2", "u1", "customer")
	other := NewClient("conn-3", "u2", "provider")
	for _, c := range []*Client{phone, laptop, other} {
		m.Connect(c)
		m.Join(c, "chat-1")
	}

	require.NoError(t, m.PublishToChat("chat-1", EventNewMessage, map[string]string{"text": "hello"}))

	for _, c := range []*Client{phone, laptop, other} {
		f, ok := next(t, c)
		require.True(t, ok)
		assert.Equal(t, EventNewMessage, f.Type)
	}
}

func TestDisconnectLeavesAllRooms(t *testing.T) {
	m := newTestManager()
	c := NewClient("conn-1", "u1", "provider")
	m.Connect(c)
	m.Join(c, "chat-1")
	require.Equal(t, 1, m.RoomSize("chat-1"))

	m.Disconnect(c)
	m.Disconnect(c)

	assert.Equal(t, 0, m.RoomSize("chat-1"))
	assert.Equal(t, 0, m.RoomSize(PersonalRoom("provider", "u1")))
	assert.Equal(t, 0, m.ClientCount())
	assert.NoError(t, m.PublishToChat("chat-1", EventNewMessage, nil))

	m.Join(c, "chat-2")
	assert.Equal(t, 0, m.RoomSize("chat-2"), "closed clients cannot rejoin")
}

func TestConcurrentJoinAndLeave(t *testing.T) {
	m := newTestManager()
	clients := make([]*Client, 200)
	for i := range clients {
		clients[i] = NewClient(fmt.Sprintf("conn-%d", i), fmt.Sprintf("u%d", i), "customer")
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			m.Connect(c)
			m.Join(c, "busy-chat")
		}(c)
	}
	wg.Wait()
	assert.Equal(t, 200, m.RoomSize("busy-chat"))

	for i, c := range clients {
		if i%2 == 0 {
			wg.Add(1)
			go func(c *Client) {
				defer wg.Done()
				m.Disconnect(c)
			}(c)
		}
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			m.PublishToChat("busy-chat", EventChatUpdate, nil)
		}
	}()
	wg.Wait()

	assert.Equal(t, 100, m.RoomSize("busy-chat"))
	assert.Equal(t, 100, m.ClientCount())
}

func TestSlowClientIsDropped(t *testing.T) {
	m := newTestManager()
	c := NewClient("conn-1", "u1", "customer")
	m.Connect(c)
	m.Join(c, "chat-1")

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, m.PublishToChat("chat-1", EventNewMessage, i))
	}
	require.NoError(t, m.PublishToChat("chat-1", EventNewMessage, "overflow"))

	assert.Equal(t, 0, m.ClientCount())
	assert.Equal(t, 0, m.RoomSize("chat-1"))
}

func TestTypingIsRelayedToOthersOnly(t *testing.T) {
	m := newTestManager()
	sender := NewClient("conn-1", "u1", "customer")
	receiver := NewClient("conn-2", "u2", "provider")
	for _, c := range []*Client{sender, receiver} {
		m.Connect(c)
		m.Join(c, "chat-1")
	}

	m.HandleClientMessage(sender, []byte(`{"type":"typing","chatId":"chat-1","isTyping":true}`))

	f, ok := next(t, receiver)
	require.True(t, ok)
	assert.Equal(t, EventTypingStatus, f.Type)
	var status TypingStatus
	require.NoError(t, json.Unmarshal(f.Data, &status))
	assert.Equal(t, "u1", status.SenderID)
	assert.Equal(t, "chat-1", status.ChatID)
	assert.True(t, status.IsTyping)
	assert.WithinDuration(t, time.Now().Add(typingTTL), status.ExpiresAt, 2*time.Second)

	_, ok = next(t, sender)
	assert.False(t, ok, "typing is not echoed to the sender")
}

func TestTypingRequiresRoomMembership(t *testing.T) {
	m := newTestManager()
	outsider := NewClient("conn-1", "u1", "customer")
	member := NewClient("conn-2", "u2", "provider")
	m.Connect(outsider)
	m.Connect(member)
	m.Join(member, "chat-1")

	m.HandleClientMessage(outsider, []byte(`{"type":"typing","chatId":"chat-1","isTyping":true}`))

	f, ok := next(t, outsider)
	require.True(t, ok)
	assert.Equal(t, EventError, f.Type)
	_, ok = next(t, member)
	assert.False(t, ok)
}

func TestJoinChatUsesAuthorizer(t *testing.T) {
	m := newTestManager()
	m.SetJoinAuthorizer(func(ctx context.Context, userID, chatID string) bool {
		return userID == "u1" && chatID == "chat-1"
	})
	allowed := NewClient("conn-1", "u1", "customer")
	denied := NewClient("conn-2", "u2", "customer")
	m.Connect(allowed)
	m.Connect(denied)

	m.HandleClientMessage(allowed, []byte(`{"type":"joinChat","chatId":"chat-1"}`))
	m.HandleClientMessage(denied, []byte(`{"type":"joinChat","chatId":"chat-1"}`))

	assert.True(t, m.InRoom(allowed, "chat-1"))
	assert.False(t, m.InRoom(denied, "chat-1"))
	f, ok := next(t, denied)
	require.True(t, ok)
	assert.Equal(t, EventError, f.Type)
}

func TestPingAndUnknownMessages(t *testing.T) {
	m := newTestManager()
	c := NewClient("conn-1", "u1", "customer")
	m.Connect(c)

	m.HandleClientMessage(c, []byte(`{"type":"ping"}`))
	f, ok := next(t, c)
	require.True(t, ok)
	assert.Equal(t, EventPong, f.Type)

	m.HandleClientMessage(c, []byte(`not json`))
	f, ok = next(t, c)
	require.True(t, ok)
	assert.Equal(t, EventError, f.Type)
}
