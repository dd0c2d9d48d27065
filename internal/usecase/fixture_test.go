package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/service"
	"servibid/internal/infrastructure/email"
	"servibid/internal/testutil/memstore"
)

type published struct {
	Target string
	Event  string
	Data   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	fail   bool
}

func (p *recordingPublisher) record(target, event string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("push channel down")
	}
	p.events = append(p.events, published{Target: target, Event: event, Data: data})
	return nil
}

func (p *recordingPublisher) PublishToUser(role, userID, event string, data interface{}) error {
	return p.record(role+":"+userID, event, data)
}

func (p *recordingPublisher) PublishToChat(chatID, event string, data interface{}) error {
	return p.record(chatID, event, data)
}

func (p *recordingPublisher) find(target, event string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.Target == target && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []email.Message
}

func (m *recordingMailer) Enqueue(msg email.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *recordingMailer) sentTo(to string) []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []email.Message
	for _, msg := range m.messages {
		if msg.To == to {
			out = append(out, msg)
		}
	}
	return out
}

type fixture struct {
	store     *memstore.Store
	publisher *recordingPublisher
	mailer    *recordingMailer
	gateway   *service.SimplifiedPaymentService

	notifications *NotificationUseCase
	accounts      *AccountUseCase
	requests      *RequestUseCase
	bids          *BidUseCase
	reviews       *ReviewUseCase
	chats         *ChatUseCase
	payments      *PaymentUseCase
	standing      *StandingUseCase
}

func newFixture() *fixture {
	store := memstore.New()
	publisher := &recordingPublisher{}
	mailer := &recordingMailer{}
	gateway := service.NewSimplifiedPaymentService()
	notifications := NewNotificationUseCase(store.Notifications(), publisher)

	return &fixture{
		store:         store,
		publisher:     publisher,
		mailer:        mailer,
		gateway:       gateway,
		notifications: notifications,
		accounts:      NewAccountUseCase(store.Customers(), store.Providers()),
		requests:      NewRequestUseCase(store.Requests(), store.Bids(), store.Reviews(), store.Customers(), store.Providers(), notifications, mailer, "aed"),
		bids:          NewBidUseCase(store.Bids(), store.Requests(), store.Customers(), store.Providers(), notifications, mailer, "aed"),
		reviews:       NewReviewUseCase(store.Reviews(), store.Requests(), store.Providers(), notifications),
		chats:         NewChatUseCase(store.Chats(), store.Messages(), store.Customers(), store.Providers(), notifications, publisher, nil),
		payments:      NewPaymentUseCase(gateway, store.Customers(), store.Providers(), store.Transactions(), notifications, mailer, "AED"),
		standing:      NewStandingUseCase(store.Providers(), store.Requests()),
	}
}

func (f *fixture) customer(t *testing.T, id string) *entity.Customer {
	t.Helper()
	c := &entity.Customer{ID: id, Name: "Customer " + id, Email: id + "@example.com"}
	require.NoError(t, f.store.Customers().Create(context.Background(), c))
	return c
}

func (f *fixture) provider(t *testing.T, id string, services ...string) *entity.Provider {
	t.Helper()
	p := &entity.Provider{ID: id, Name: "Provider " + id, Email: id + "@example.com", ServicesOffered: services}
	require.NoError(t, f.store.Providers().Create(context.Background(), p))
	return p
}

func (f *fixture) request(t *testing.T, customerID, service string) *entity.Request {
	t.Helper()
	r, err := f.requests.CreateRequest(context.Background(), CreateRequestInput{
		CustomerID:  customerID,
		Service:     service,
		Budget:      200,
		Date:        "2030-01-15",
		Description: "Kitchen sink is leaking",
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) notificationsOf(t *testing.T, userID, kind string) []*entity.Notification {
	t.Helper()
	all, err := f.notifications.List(context.Background(), userID)
	require.NoError(t, err)
	var out []*entity.Notification
	for _, n := range all {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
