// Package memstore is an in-memory implementation of the repository
// interfaces. A single mutex serializes every operation, which gives the same
// per-call atomicity the Firestore repositories get from transactions.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

type Store struct {
	mu sync.Mutex

	customers     map[string]*entity.Customer
	providers     map[string]*entity.Provider
	services      map[string]*entity.Service
	requests      map[string]*entity.Request
	bids          map[string]*entity.Bid
	reviews       map[string]*entity.Review
	chats         map[string]*entity.Chat
	chatPairs     map[string]string
	messages      map[string]*entity.Message
	notifications map[string]*entity.Notification
	transactions  map[string]*entity.Transaction

	// last keeps generated timestamps strictly increasing.
	last  time.Time
	clock func() time.Time
}

func New() *Store {
	return &Store{
		customers:     make(map[string]*entity.Customer),
		providers:     make(map[string]*entity.Provider),
		services:      make(map[string]*entity.Service),
		requests:      make(map[string]*entity.Request),
		bids:          make(map[string]*entity.Bid),
		reviews:       make(map[string]*entity.Review),
		chats:         make(map[string]*entity.Chat),
		chatPairs:     make(map[string]string),
		messages:      make(map[string]*entity.Message),
		notifications: make(map[string]*entity.Notification),
		transactions:  make(map[string]*entity.Transaction),
		clock:         time.Now,
	}
}

// now returns strictly increasing timestamps so ordering is deterministic.
func (s *Store) now() time.Time {
	t := s.clock()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func (s *Store) Customers() repository.CustomerRepository         { return customerRepo{s} }
func (s *Store) Providers() repository.ProviderRepository         { return providerRepo{s} }
func (s *Store) Services() repository.ServiceRepository           { return serviceRepo{s} }
func (s *Store) Requests() repository.RequestRepository           { return requestRepo{s} }
func (s *Store) Bids() repository.BidRepository                   { return bidRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository             { return reviewRepo{s} }
func (s *Store) Chats() repository.ChatRepository                 { return chatRepo{s} }
func (s *Store) Messages() repository.MessageRepository           { return messageRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }
func (s *Store) Transactions() repository.TransactionRepository   { return transactionRepo{s} }

// Counts used by tests to assert on persisted state.

func (s *Store) ChatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

func (s *Store) ReviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *Store) BidCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bids)
}

// copies keep callers from mutating stored records without going through a repository.

func copyRequest(r *entity.Request) *entity.Request {
	c := *r
	if r.Price != nil {
		price := *r.Price
		c.Price = &price
	}
	return &c
}

func copyProvider(p *entity.Provider) *entity.Provider {
	c := *p
	c.Badges = append([]string{}, p.Badges...)
	c.ServicesOffered = append([]string{}, p.ServicesOffered...)
	return &c
}

func copyChat(ch *entity.Chat) *entity.Chat {
	c := *ch
	c.Participants = append([]string{}, ch.Participants...)
	return &c
}

// ---- customers

type customerRepo struct{ s *Store }

func (r customerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	for _, existing := range r.s.customers {
		if existing.Email == customer.Email {
			return errors.Conflict("Customer already exists")
		}
	}
	customer.ID = newID(customer.ID)
	customer.CreatedAt = r.s.now()
	customer.UpdatedAt = customer.CreatedAt
	c := *customer
	r.s.customers[customer.ID] = &c
	return nil
}

func (r customerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	customer, ok := r.s.customers[id]
	if !ok {
		return nil, errors.NotFound("Customer", nil)
	}
	c := *customer
	return &c, nil
}

func (r customerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, customer := range r.s.customers {
		if customer.Email == email {
			c := *customer
			return &c, nil
		}
	}
	return nil, errors.NotFound("Customer", nil)
}

func (r customerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[customer.ID]; !ok {
		return errors.NotFound("Customer", nil)
	}
	customer.UpdatedAt = r.s.now()
	c := *customer
	r.s.customers[customer.ID] = &c
	return nil
}

// ---- providers

type providerRepo struct{ s *Store }

func (r providerRepo) Create(ctx context.Context, provider *entity.Provider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	provider.Email = strings.ToLower(strings.TrimSpace(provider.Email))
	for _, existing := range r.s.providers {
		if existing.Email == provider.Email {
			return errors.Conflict("Provider already exists")
		}
	}
	provider.ID = newID(provider.ID)
	if provider.Badges == nil {
		provider.Badges = []string{}
	}
	if provider.ServicesOffered == nil {
		provider.ServicesOffered = []string{}
	}
	provider.CreatedAt = r.s.now()
	provider.UpdatedAt = provider.CreatedAt
	r.s.providers[provider.ID] = copyProvider(provider)
	return nil
}

func (r providerRepo) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	provider, ok := r.s.providers[id]
	if !ok {
		return nil, errors.NotFound("Provider", nil)
	}
	return copyProvider(provider), nil
}

func (r providerRepo) GetByEmail(ctx context.Context, email string) (*entity.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, provider := range r.s.providers {
		if provider.Email == email {
			return copyProvider(provider), nil
		}
	}
	return nil, errors.NotFound("Provider", nil)
}

func (r providerRepo) Update(ctx context.Context, provider *entity.Provider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.providers[provider.ID]; !ok {
		return errors.NotFound("Provider", nil)
	}
	provider.UpdatedAt = r.s.now()
	r.s.providers[provider.ID] = copyProvider(provider)
	return nil
}

func (r providerRepo) ListByService(ctx context.Context, service string) ([]*entity.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	providers := make([]*entity.Provider, 0)
	for _, provider := range r.s.providers {
		for _, offered := range provider.ServicesOffered {
			if offered == service {
				providers = append(providers, copyProvider(provider))
				break
			}
		}
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].CreatedAt.Before(providers[j].CreatedAt) })
	return providers, nil
}

func (r providerRepo) ListAll(ctx context.Context) ([]*entity.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	providers := make([]*entity.Provider, 0, len(r.s.providers))
	for _, provider := range r.s.providers {
		providers = append(providers, copyProvider(provider))
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].CreatedAt.Before(providers[j].CreatedAt) })
	return providers, nil
}

func (r providerRepo) ListTop(ctx context.Context, limit int) ([]*entity.Provider, error) {
	providers, _ := r.ListAll(ctx)
	sort.SliceStable(providers, func(i, j int) bool {
		if providers[i].JobsDone != providers[j].JobsDone {
			return providers[i].JobsDone > providers[j].JobsDone
		}
		return providers[i].Rating > providers[j].Rating
	})
	if len(providers) > limit {
		providers = providers[:limit]
	}
	return providers, nil
}

func (r providerRepo) mutate(id string, fn func(*entity.Provider)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	provider, ok := r.s.providers[id]
	if !ok {
		return errors.NotFound("Provider", nil)
	}
	fn(provider)
	provider.UpdatedAt = r.s.now()
	return nil
}

func (r providerRepo) IncrementStats(ctx context.Context, id string, jobs int, revenue float64) error {
	return r.mutate(id, func(p *entity.Provider) {
		p.JobsDone += jobs
		p.Revenue += revenue
	})
}

func (r providerRepo) SetRating(ctx context.Context, id string, rating float64) error {
	return r.mutate(id, func(p *entity.Provider) { p.Rating = rating })
}

func (r providerRepo) SetStanding(ctx context.Context, id string, rank string, badges []string) error {
	return r.mutate(id, func(p *entity.Provider) {
		p.Rank = rank
		p.Badges = append([]string{}, badges...)
	})
}

// ---- services

type serviceRepo struct{ s *Store }

func (r serviceRepo) ListByCategory(ctx context.Context, category string) ([]*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	services := make([]*entity.Service, 0)
	for _, service := range r.s.services {
		if service.Category == category {
			c := *service
			services = append(services, &c)
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

func (r serviceRepo) Upsert(ctx context.Context, service *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	service.ID = newID(service.ID)
	c := *service
	r.s.services[service.ID] = &c
	return nil
}
