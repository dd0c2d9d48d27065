package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"servibid/internal/infrastructure/ratelimit"
	"servibid/pkg/logger"
	"servibid/pkg/metrics"
)

// Server to client event types.
const (
	EventNotification = "notification"
	EventNewBid       = "newBid"
	EventNewChat      = "newChat"
	EventNewMessage   = "newMessage"
	EventChatUpdate   = "chatUpdate"
	EventTypingStatus = "typingStatus"
	EventError        = "error"
	EventPong         = "pong"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client represents one push connection. A user may hold several.
type Client struct {
	ID     string
	UserID string
	Role   string
	Conn   *websocket.Conn
	Send   chan []byte

	// rooms and closed are guarded by the manager mutex.
	rooms  map[string]struct{}
	closed bool
}

func NewClient(id, userID, role string) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Role:   role,
		Send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// Event is the frame written to clients.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// JoinAuthorizer decides whether a user may subscribe to a chat room.
type JoinAuthorizer func(ctx context.Context, userID, chatID string) bool

// Manager is the subscription registry. It maps room keys to the set of
// connections subscribed to them and delivers events at most once.
type Manager struct {
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	mutex   sync.RWMutex

	authorizeJoin JoinAuthorizer
	limiter       *ratelimit.RateLimiter
	log           zerolog.Logger
}

func NewManager(limiter *ratelimit.RateLimiter) *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		limiter: limiter,
		log:     logger.WithComponent("websocket"),
	}
}

// PersonalRoom is the room that reaches every connection of one user in one role.
func PersonalRoom(role, userID string) string {
	return role + ":" + userID
}

func (m *Manager) SetJoinAuthorizer(fn JoinAuthorizer) {
	m.authorizeJoin = fn
}

// Start closes every connection once ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()

		m.mutex.RLock()
		clients := make([]*Client, 0, len(m.clients))
		for _, client := range m.clients {
			clients = append(clients, client)
		}
		m.mutex.RUnlock()

		for _, client := range clients {
			m.Disconnect(client)
		}
		m.log.Info().Int("clients", len(clients)).Msg("push connections closed")
	}()
}

// Connect registers the client and subscribes it to its personal room.
func (m *Manager) Connect(client *Client) {
	m.mutex.Lock()
	m.clients[client.ID] = client
	m.joinLocked(client, PersonalRoom(client.Role, client.UserID))
	m.mutex.Unlock()

	metrics.ConnectedClients.Inc()
	m.log.Debug().Str("user", client.UserID).Str("role", client.Role).Msg("client connected")
}

// Disconnect removes the client from every room and closes its send channel.
// It is safe to call more than once.
func (m *Manager) Disconnect(client *Client) {
	m.mutex.Lock()
	if client.closed {
		m.mutex.Unlock()
		return
	}
	client.closed = true
	for room := range client.rooms {
		m.leaveLocked(client, room)
	}
	delete(m.clients, client.ID)
	close(client.Send)
	m.mutex.Unlock()

	metrics.ConnectedClients.Dec()
	m.log.Debug().Str("user", client.UserID).Msg("client disconnected")
}

// Authorize reports whether client may join the chat room.
func (m *Manager) Authorize(ctx context.Context, client *Client, chatID string) bool {
	if m.authorizeJoin == nil {
		return true
	}
	return m.authorizeJoin(ctx, client.UserID, chatID)
}

func (m *Manager) Join(client *Client, room string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if client.closed {
		return
	}
	m.joinLocked(client, room)
}

func (m *Manager) Leave(client *Client, room string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.leaveLocked(client, room)
}

func (m *Manager) joinLocked(client *Client, room string) {
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		m.rooms[room] = members
	}
	members[client.ID] = client
	client.rooms[room] = struct{}{}
}

func (m *Manager) leaveLocked(client *Client, room string) {
	delete(client.rooms, room)
	members, ok := m.rooms[room]
	if !ok {
		return
	}
	delete(members, client.ID)
	if len(members) == 0 {
		delete(m.rooms, room)
	}
}

func (m *Manager) InRoom(client *Client, room string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := client.rooms[room]
	return ok
}

func (m *Manager) RoomSize(room string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms[room])
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// PublishToUser emits an event to a user's personal room.
func (m *Manager) PublishToUser(role, userID, event string, data interface{}) error {
	return m.Emit(PersonalRoom(role, userID), event, data)
}

// PublishToChat emits an event to everyone subscribed to a chat.
func (m *Manager) PublishToChat(chatID, event string, data interface{}) error {
	return m.Emit(chatID, event, data)
}

func (m *Manager) Emit(room, event string, data interface{}) error {
	return m.EmitExcept(room, event, data, "")
}

// EmitExcept delivers to every member of room whose user is not exceptUserID.
// Clients with a full buffer are disconnected rather than blocking the caller.
func (m *Manager) EmitExcept(room, event string, data interface{}, exceptUserID string) error {
	payload, err := json.Marshal(Event{Type: event, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}

	var slow []*Client
	m.mutex.RLock()
	for _, client := range m.rooms[room] {
		if exceptUserID != "" && client.UserID == exceptUserID {
			continue
		}
		select {
		case client.Send <- payload:
			metrics.EventsEmitted.WithLabelValues(event).Inc()
		default:
			metrics.EventsDropped.WithLabelValues(event).Inc()
			slow = append(slow, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range slow {
		m.log.Warn().Str("user", client.UserID).Str("event", event).Msg("send buffer full, dropping client")
		m.Disconnect(client)
	}
	return nil
}

// ReadPump reads client frames until the connection fails.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Disconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.log.Warn().Err(err).Str("user", c.UserID).Msg("unexpected close")
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

// WritePump drains the send channel to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
