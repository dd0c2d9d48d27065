package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

type emailIndex struct {
	OwnerID string `firestore:"ownerId"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type firestoreCustomerRepository struct {
	firestoreBase
}

func NewFirestoreCustomerRepository(client *firestore.Client, timeout time.Duration) repository.CustomerRepository {
	return &firestoreCustomerRepository{firestoreBase: newBase(client, timeout)}
}

// Create registers the customer and reserves its email in one transaction.
func (r *firestoreCustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	customer.Email = normalizeEmail(customer.Email)
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	emailRef := r.client.Collection(customerEmailsCollection).Doc(customer.Email)
	customerRef := r.client.Collection(customersCollection).Doc(customer.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(emailRef); err == nil {
			return errors.Conflict("Customer already exists")
		} else if !isNotFound(err) {
			return err
		}
		if err := tx.Create(emailRef, emailIndex{OwnerID: customer.ID}); err != nil {
			return err
		}
		return tx.Create(customerRef, customer)
	})
	return storageError("Failed to create customer", err)
}

func (r *firestoreCustomerRepository) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.client.Collection(customersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Customer", err)
		}
		return nil, storageError("Failed to get customer", err)
	}

	var customer entity.Customer
	if err := doc.DataTo(&customer); err != nil {
		return nil, errors.Internal("Failed to parse customer data", err)
	}
	return &customer, nil
}

func (r *firestoreCustomerRepository) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	customers, err := collect[entity.Customer](r.client.Collection(customersCollection).
		Where("email", "==", normalizeEmail(email)).
		Limit(1).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to get customer", err)
	}
	if len(customers) == 0 {
		return nil, errors.NotFound("Customer", nil)
	}
	return customers[0], nil
}

// Update replaces the profile. The email is immutable after registration.
func (r *firestoreCustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	customer.UpdatedAt = time.Now()
	_, err := r.client.Collection(customersCollection).Doc(customer.ID).Set(ctx, customer)
	if err != nil {
		return storageError("Failed to update customer", err)
	}
	return nil
}

type firestoreProviderRepository struct {
	firestoreBase
}

func NewFirestoreProviderRepository(client *firestore.Client, timeout time.Duration) repository.ProviderRepository {
	return &firestoreProviderRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreProviderRepository) Create(ctx context.Context, provider *entity.Provider) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if provider.ID == "" {
		provider.ID = uuid.New().String()
	}
	provider.Email = normalizeEmail(provider.Email)
	if provider.Badges == nil {
		provider.Badges = []string{}
	}
	if provider.ServicesOffered == nil {
		provider.ServicesOffered = []string{}
	}
	now := time.Now()
	provider.CreatedAt = now
	provider.UpdatedAt = now

	emailRef := r.client.Collection(providerEmailsCollection).Doc(provider.Email)
	providerRef := r.client.Collection(providersCollection).Doc(provider.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(emailRef); err == nil {
			return errors.Conflict("Provider already exists")
		} else if !isNotFound(err) {
			return err
		}
		if err := tx.Create(emailRef, emailIndex{OwnerID: provider.ID}); err != nil {
			return err
		}
		return tx.Create(providerRef, provider)
	})
	return storageError("Failed to create provider", err)
}

func (r *firestoreProviderRepository) GetByID(ctx context.Context, id string) (*entity.Provider, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.client.Collection(providersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Provider", err)
		}
		return nil, storageError("Failed to get provider", err)
	}

	var provider entity.Provider
	if err := doc.DataTo(&provider); err != nil {
		return nil, errors.Internal("Failed to parse provider data", err)
	}
	return &provider, nil
}

func (r *firestoreProviderRepository) GetByEmail(ctx context.Context, email string) (*entity.Provider, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	providers, err := collect[entity.Provider](r.client.Collection(providersCollection).
		Where("email", "==", normalizeEmail(email)).
		Limit(1).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to get provider", err)
	}
	if len(providers) == 0 {
		return nil, errors.NotFound("Provider", nil)
	}
	return providers[0], nil
}

func (r *firestoreProviderRepository) Update(ctx context.Context, provider *entity.Provider) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	provider.UpdatedAt = time.Now()
	_, err := r.client.Collection(providersCollection).Doc(provider.ID).Set(ctx, provider)
	if err != nil {
		return storageError("Failed to update provider", err)
	}
	return nil
}

func (r *firestoreProviderRepository) ListByService(ctx context.Context, service string) ([]*entity.Provider, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	providers, err := collect[entity.Provider](r.client.Collection(providersCollection).
		Where("servicesOffered", "array-contains", service).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list providers by service", err)
	}
	return providers, nil
}

func (r *firestoreProviderRepository) ListAll(ctx context.Context) ([]*entity.Provider, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	providers, err := collect[entity.Provider](r.client.Collection(providersCollection).Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list providers", err)
	}
	return providers, nil
}

func (r *firestoreProviderRepository) ListTop(ctx context.Context, limit int) ([]*entity.Provider, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	providers, err := collect[entity.Provider](r.client.Collection(providersCollection).
		OrderBy("jobsDone", firestore.Desc).
		OrderBy("rating", firestore.Desc).
		Limit(limit).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list top providers", err)
	}
	return providers, nil
}

func (r *firestoreProviderRepository) IncrementStats(ctx context.Context, id string, jobs int, revenue float64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.client.Collection(providersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "jobsDone", Value: firestore.Increment(jobs)},
		{Path: "revenue", Value: firestore.Increment(revenue)},
		{Path: "updatedAt", Value: time.Now()},
	})
	return r.updateError("Failed to update provider stats", err)
}

func (r *firestoreProviderRepository) SetRating(ctx context.Context, id string, rating float64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.client.Collection(providersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "rating", Value: rating},
		{Path: "updatedAt", Value: time.Now()},
	})
	return r.updateError("Failed to update provider rating", err)
}

func (r *firestoreProviderRepository) SetStanding(ctx context.Context, id string, rank string, badges []string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.client.Collection(providersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "rank", Value: rank},
		{Path: "badges", Value: badges},
		{Path: "updatedAt", Value: time.Now()},
	})
	return r.updateError("Failed to update provider standing", err)
}

func (r *firestoreProviderRepository) updateError(message string, err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return errors.NotFound("Provider", err)
	}
	return storageError(message, err)
}

type firestoreServiceRepository struct {
	firestoreBase
}

func NewFirestoreServiceRepository(client *firestore.Client, timeout time.Duration) repository.ServiceRepository {
	return &firestoreServiceRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreServiceRepository) ListByCategory(ctx context.Context, category string) ([]*entity.Service, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	services, err := collect[entity.Service](r.client.Collection(servicesCollection).
		Where("category", "==", category).
		OrderBy("name", firestore.Asc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list services", err)
	}
	return services, nil
}

func (r *firestoreServiceRepository) Upsert(ctx context.Context, service *entity.Service) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if service.ID == "" {
		service.ID = uuid.New().String()
	}
	_, err := r.client.Collection(servicesCollection).Doc(service.ID).Set(ctx, service)
	if err != nil {
		return storageError("Failed to save service", err)
	}
	return nil
}
