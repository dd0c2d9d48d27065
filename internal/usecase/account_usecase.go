package usecase

import (
	"context"
	"strings"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

type AccountUseCase struct {
	customerRepo repository.CustomerRepository
	providerRepo repository.ProviderRepository
}

func NewAccountUseCase(customerRepo repository.CustomerRepository, providerRepo repository.ProviderRepository) *AccountUseCase {
	return &AccountUseCase{
		customerRepo: customerRepo,
		providerRepo: providerRepo,
	}
}

type RegisterCustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Image   string
}

type UpdateCustomerInput struct {
	Name    *string
	Phone   *string
	Address *string
	Image   *string
}

type RegisterProviderInput struct {
	Name            string
	Email           string
	Phone           string
	Description     string
	Image           string
	ServicesOffered []string
}

type UpdateProviderInput struct {
	Name        *string
	Phone       *string
	Description *string
	Image       *string
	// ServicesOffered replaces the offered services when non-nil.
	ServicesOffered []string
}

func (uc *AccountUseCase) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*entity.Customer, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, errors.Validation("name and email are required")
	}

	customer := &entity.Customer{
		Name:    strings.TrimSpace(input.Name),
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
		Image:   input.Image,
	}
	if err := uc.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (uc *AccountUseCase) GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	return uc.customerRepo.GetByEmail(ctx, email)
}

func (uc *AccountUseCase) GetCustomerByID(ctx context.Context, id string) (*entity.Customer, error) {
	return uc.customerRepo.GetByID(ctx, id)
}

func (uc *AccountUseCase) UpdateCustomer(ctx context.Context, email string, input UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := uc.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, errors.Validation("name cannot be empty")
		}
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.Image != nil {
		customer.Image = *input.Image
	}

	if err := uc.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (uc *AccountUseCase) RegisterProvider(ctx context.Context, input RegisterProviderInput) (*entity.Provider, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, errors.Validation("name and email are required")
	}

	provider := &entity.Provider{
		Name:            strings.TrimSpace(input.Name),
		Email:           input.Email,
		Phone:           input.Phone,
		Description:     input.Description,
		Image:           input.Image,
		Rank:            UnrankedStanding,
		Badges:          []string{},
		ServicesOffered: normalizeServices(input.ServicesOffered),
	}
	if err := uc.providerRepo.Create(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

func (uc *AccountUseCase) GetProviderByEmail(ctx context.Context, email string) (*entity.Provider, error) {
	return uc.providerRepo.GetByEmail(ctx, email)
}

func (uc *AccountUseCase) GetProviderByID(ctx context.Context, id string) (*entity.Provider, error) {
	return uc.providerRepo.GetByID(ctx, id)
}

func (uc *AccountUseCase) UpdateProvider(ctx context.Context, id string, input UpdateProviderInput) (*entity.Provider, error) {
	provider, err := uc.providerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, errors.Validation("name cannot be empty")
		}
		provider.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		provider.Phone = *input.Phone
	}
	if input.Description != nil {
		provider.Description = *input.Description
	}
	if input.Image != nil {
		provider.Image = *input.Image
	}
	if input.ServicesOffered != nil {
		provider.ServicesOffered = normalizeServices(input.ServicesOffered)
	}

	if err := uc.providerRepo.Update(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

// GetUser resolves an id against both account kinds, providers first.
func (uc *AccountUseCase) GetUser(ctx context.Context, id string) (*entity.Participant, error) {
	if provider, err := uc.providerRepo.GetByID(ctx, id); err == nil {
		return &entity.Participant{ID: provider.ID, Name: provider.Name, Role: entity.RoleProvider, Image: provider.Image}, nil
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	customer, err := uc.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("User", nil)
		}
		return nil, err
	}
	return &entity.Participant{ID: customer.ID, Name: customer.Name, Role: entity.RoleCustomer, Image: customer.Image}, nil
}

func normalizeServices(services []string) []string {
	seen := make(map[string]bool, len(services))
	out := make([]string, 0, len(services))
	for _, service := range services {
		service = strings.TrimSpace(service)
		if service == "" || seen[service] {
			continue
		}
		seen[service] = true
		out = append(out, service)
	}
	return out
}
