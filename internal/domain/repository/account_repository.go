package repository

import (
	"context"

	"servibid/internal/domain/entity"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
}

type ProviderRepository interface {
	Create(ctx context.Context, provider *entity.Provider) error
	GetByID(ctx context.Context, id string) (*entity.Provider, error)
	GetByEmail(ctx context.Context, email string) (*entity.Provider, error)
	Update(ctx context.Context, provider *entity.Provider) error
	ListByService(ctx context.Context, service string) ([]*entity.Provider, error)
	ListAll(ctx context.Context) ([]*entity.Provider, error)
	// ListTop orders by jobsDone then rating, both descending.
	ListTop(ctx context.Context, limit int) ([]*entity.Provider, error)
	// IncrementStats atomically adds to jobsDone and revenue.
	IncrementStats(ctx context.Context, id string, jobs int, revenue float64) error
	SetRating(ctx context.Context, id string, rating float64) error
	SetStanding(ctx context.Context, id string, rank string, badges []string) error
}

type ServiceRepository interface {
	ListByCategory(ctx context.Context, category string) ([]*entity.Service, error)
	Upsert(ctx context.Context, service *entity.Service) error
}
