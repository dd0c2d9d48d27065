package websocket

import (
	"context"
	"encoding/json"
	"time"

	"servibid/internal/infrastructure/ratelimit"
)

// Client to server frame types.
const (
	MessageJoinChat  = "joinChat"
	MessageLeaveChat = "leaveChat"
	MessageTyping    = "typing"
	MessagePing      = "ping"
)

// typingTTL is how long a client should show a typing indicator without a refresh.
const typingTTL = 5 * time.Second

const joinTimeout = 5 * time.Second

// ClientMessage is a frame sent by a client.
type ClientMessage struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

type TypingStatus struct {
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	IsTyping  bool      `json:"isTyping"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (m *Manager) HandleClientMessage(client *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		m.sendError(client, "Invalid message format")
		return
	}

	switch msg.Type {
	case MessageJoinChat:
		m.handleJoinChat(client, msg)
	case MessageLeaveChat:
		if msg.ChatID != "" {
			m.Leave(client, msg.ChatID)
		}
	case MessageTyping:
		m.handleTyping(client, msg)
	case MessagePing:
		m.sendToClient(client, EventPong, nil)
	default:
		m.sendError(client, "Unknown message type: "+msg.Type)
	}
}

func (m *Manager) handleJoinChat(client *Client, msg ClientMessage) {
	if msg.ChatID == "" {
		m.sendError(client, "chatId is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()
	if !m.Authorize(ctx, client, msg.ChatID) {
		m.sendError(client, "Not a participant of this chat")
		return
	}
	m.Join(client, msg.ChatID)
}

// handleTyping relays to the other members of the chat room. Nothing is stored.
func (m *Manager) handleTyping(client *Client, msg ClientMessage) {
	if msg.ChatID == "" || !m.InRoom(client, msg.ChatID) {
		m.sendError(client, "Join the chat before sending typing events")
		return
	}
	if allowed, _ := m.limiter.Allow(client.UserID, ratelimit.ActionTyping); !allowed {
		return
	}

	expiresAt := time.Now().UTC()
	if msg.IsTyping {
		expiresAt = expiresAt.Add(typingTTL)
	}
	status := TypingStatus{
		ChatID:    msg.ChatID,
		SenderID:  client.UserID,
		IsTyping:  msg.IsTyping,
		ExpiresAt: expiresAt,
	}
	if err := m.EmitExcept(msg.ChatID, EventTypingStatus, status, client.UserID); err != nil {
		m.log.Error().Err(err).Msg("typing relay failed")
	}
}

func (m *Manager) sendToClient(client *Client, event string, data interface{}) {
	payload, err := json.Marshal(Event{Type: event, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if client.closed {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

func (m *Manager) sendError(client *Client, message string) {
	m.sendToClient(client, EventError, errorPayload{Message: message})
}
