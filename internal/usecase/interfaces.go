package usecase

import (
	"time"

	"servibid/internal/infrastructure/email"
	"servibid/pkg/logger"
)

// EventPublisher delivers live events to connected clients. Delivery is best
// effort; callers log errors and carry on.
type EventPublisher interface {
	PublishToUser(role, userID, event string, data interface{}) error
	PublishToChat(chatID, event string, data interface{}) error
}

// ActionLimiter throttles per-user actions.
type ActionLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

// Mailer queues an email for asynchronous delivery.
type Mailer interface {
	Enqueue(msg email.Message)
}

// Event types pushed to clients.
const (
	EventNotification = "notification"
	EventNewBid       = "newBid"
	EventNewChat      = "newChat"
	EventNewMessage   = "newMessage"
	EventChatUpdate   = "chatUpdate"
)

type emailBuilder func(to string, data email.Data) (email.Message, error)

// queueEmail renders and enqueues an email. Rendering failures are logged.
func queueEmail(mailer Mailer, build emailBuilder, to string, data email.Data) {
	if mailer == nil || to == "" {
		return
	}
	msg, err := build(to, data)
	if err != nil {
		logger.Error("Failed to render email for %s: %v", to, err)
		return
	}
	mailer.Enqueue(msg)
}
