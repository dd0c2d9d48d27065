package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/internal/infrastructure/email"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

const fanOutWorkers = 8

var requestDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

type RequestUseCase struct {
	requestRepo  repository.RequestRepository
	bidRepo      repository.BidRepository
	reviewRepo   repository.ReviewRepository
	customerRepo repository.CustomerRepository
	providerRepo repository.ProviderRepository
	notifier     *NotificationUseCase
	mailer       Mailer
	currency     string
	log          zerolog.Logger
}

func NewRequestUseCase(
	requestRepo repository.RequestRepository,
	bidRepo repository.BidRepository,
	reviewRepo repository.ReviewRepository,
	customerRepo repository.CustomerRepository,
	providerRepo repository.ProviderRepository,
	notifier *NotificationUseCase,
	mailer Mailer,
	currency string,
) *RequestUseCase {
	return &RequestUseCase{
		requestRepo:  requestRepo,
		bidRepo:      bidRepo,
		reviewRepo:   reviewRepo,
		customerRepo: customerRepo,
		providerRepo: providerRepo,
		notifier:     notifier,
		mailer:       mailer,
		currency:     currency,
		log:          logger.WithComponent("requests"),
	}
}

type CreateRequestInput struct {
	CustomerID  string
	Service     string
	Category    string
	Budget      float64
	Date        string
	Description string
	Location    string
	Image       string
	Details     map[string]interface{}
}

type UpdateRequestInput struct {
	ProviderID *string
	Price      *float64
	ReviewID   *string
	Image      *string
}

func parseRequestDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range requestDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Validation("date is invalid")
}

func (uc *RequestUseCase) CreateRequest(ctx context.Context, input CreateRequestInput) (*entity.Request, error) {
	if input.CustomerID == "" || strings.TrimSpace(input.Service) == "" || input.Date == "" || strings.TrimSpace(input.Description) == "" {
		return nil, errors.Validation("customerId, service, date and description are required")
	}
	if input.Budget <= 0 {
		return nil, errors.Validation("budget must be greater than zero")
	}
	date, err := parseRequestDate(input.Date)
	if err != nil {
		return nil, err
	}

	customer, err := uc.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	request := &entity.Request{
		CustomerID:  customer.ID,
		Service:     strings.TrimSpace(input.Service),
		Category:    input.Category,
		Budget:      input.Budget,
		Date:        date,
		Description: input.Description,
		Location:    input.Location,
		Image:       input.Image,
		State:       entity.RequestStateInProgress,
		Details:     input.Details,
	}
	if err := uc.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	uc.notifier.NotifyQuietly(ctx, NotifyInput{
		Role:    entity.RoleCustomer,
		UserID:  customer.ID,
		Type:    entity.NotificationRequestCreated,
		Message: fmt.Sprintf("Your request for %s has been scheduled successfully.", request.Service),
		Meta:    map[string]interface{}{"requestId": request.ID},
	})
	queueEmail(uc.mailer, email.RequestSubmitted, customer.Email, email.Data{
		Name:        customer.Name,
		Service:     request.Service,
		Description: request.Description,
		Currency:    uc.currency,
		Amount:      request.Budget,
		Date:        request.Date,
	})

	uc.announce(ctx, request)
	return request, nil
}

// announce tells every provider offering the service about a new request.
// Failures are logged per provider and never surface to the caller.
func (uc *RequestUseCase) announce(ctx context.Context, request *entity.Request) {
	providers, err := uc.providerRepo.ListByService(ctx, request.Service)
	if err != nil {
		uc.log.Error().Err(err).Str("service", request.Service).Msg("failed to list providers for fan-out")
		return
	}

	var g errgroup.Group
	g.SetLimit(fanOutWorkers)
	for _, provider := range providers {
		provider := provider
		g.Go(func() error {
			uc.notifier.NotifyQuietly(ctx, NotifyInput{
				Role:    entity.RoleProvider,
				UserID:  provider.ID,
				Type:    entity.NotificationNewJob,
				Message: fmt.Sprintf("A new request for %s was just posted.", request.Service),
				Meta:    map[string]interface{}{"requestId": request.ID, "service": request.Service},
			})
			queueEmail(uc.mailer, email.NewJob, provider.Email, email.Data{
				Name:        provider.Name,
				Service:     request.Service,
				Description: request.Description,
				Currency:    uc.currency,
				Amount:      request.Budget,
				Date:        request.Date,
			})
			return nil
		})
	}
	_ = g.Wait()
	uc.log.Debug().Str("request", request.ID).Int("providers", len(providers)).Msg("request announced")
}

func (uc *RequestUseCase) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	return uc.requestRepo.GetByID(ctx, id)
}

func (uc *RequestUseCase) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Request, error) {
	return uc.requestRepo.ListByCustomer(ctx, customerID)
}

func (uc *RequestUseCase) ListByProvider(ctx context.Context, providerID string) ([]*entity.Request, error) {
	return uc.requestRepo.ListByProvider(ctx, providerID)
}

func (uc *RequestUseCase) ListAvailable(ctx context.Context, services []string) ([]*entity.Request, error) {
	wanted := normalizeServices(services)
	if len(wanted) == 0 {
		return nil, errors.Validation("service is required")
	}
	return uc.requestRepo.ListAvailable(ctx, wanted)
}

// UpdateRequest applies an assignment and the optional review and image
// fields in that order.
func (uc *RequestUseCase) UpdateRequest(ctx context.Context, id string, input UpdateRequestInput) (*entity.Request, error) {
	var request *entity.Request
	var err error

	if input.ProviderID != nil {
		request, err = uc.AcceptBid(ctx, id, *input.ProviderID, input.Price)
		if err != nil {
			return nil, err
		}
	} else if input.Price != nil {
		return nil, errors.Validation("price requires providerId")
	}

	if input.ReviewID != nil {
		request, err = uc.linkReview(ctx, id, *input.ReviewID)
		if err != nil {
			return nil, err
		}
	}

	if input.Image != nil {
		request, err = uc.requestRepo.Patch(ctx, id, entity.RequestPatch{Image: input.Image})
		if err != nil {
			return nil, err
		}
	}

	if request == nil {
		return uc.requestRepo.GetByID(ctx, id)
	}
	return request, nil
}

// linkReview points a request at its stored review. The id must name the
// review written for this request by its assigned provider, and a request
// that already links a different review is left alone.
func (uc *RequestUseCase) linkReview(ctx context.Context, id, reviewID string) (*entity.Request, error) {
	if strings.TrimSpace(reviewID) == "" {
		return nil, errors.Validation("reviewId must not be empty")
	}
	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.ReviewID == reviewID {
		return request, nil
	}

	review, err := uc.reviewRepo.GetByRequestID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Validation("reviewId does not match a review of this request")
		}
		return nil, err
	}
	if review.ID != reviewID {
		return nil, errors.Validation("reviewId does not match a review of this request")
	}

	if err := uc.requestRepo.AttachReview(ctx, id, review.ProviderID, review.ID); err != nil {
		return nil, err
	}
	return uc.requestRepo.GetByID(ctx, id)
}

// AcceptBid assigns a provider to a request. Without a price the provider's
// bid on the request decides it. Re-accepting the same provider at the same
// price changes nothing and notifies nobody.
func (uc *RequestUseCase) AcceptBid(ctx context.Context, requestID, providerID string, price *float64) (*entity.Request, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, errors.Validation("providerId is required")
	}
	if price != nil && *price <= 0 {
		return nil, errors.Validation("price must be greater than zero")
	}

	if _, err := uc.providerRepo.GetByID(ctx, providerID); err != nil {
		return nil, err
	}

	if price == nil {
		bid, err := uc.bidRepo.FindByRequestAndProvider(ctx, requestID, providerID)
		switch {
		case err == nil:
			p := bid.Price
			price = &p
		case !errors.Is(err, errors.CodeNotFound):
			return nil, err
		}
	}

	assignment, err := uc.requestRepo.AssignProvider(ctx, requestID, providerID, price)
	if err != nil {
		return nil, err
	}
	request := assignment.Request
	if !assignment.Changed {
		return request, nil
	}

	if err := uc.bidRepo.Resolve(ctx, requestID, providerID); err != nil {
		uc.log.Warn().Err(err).Str("request", requestID).Msg("failed to resolve bids")
	}
	if assignment.PreviousProvider != "" && assignment.PreviousProvider != providerID {
		uc.log.Info().Str("request", requestID).Str("from", assignment.PreviousProvider).Str("to", providerID).Msg("request reassigned")
	}

	uc.notifier.NotifyQuietly(ctx, NotifyInput{
		Role:    entity.RoleProvider,
		UserID:  providerID,
		Type:    entity.NotificationBidAccepted,
		Message: fmt.Sprintf("Your bid on %s was accepted by a customer.", request.Service),
		Meta:    map[string]interface{}{"requestId": request.ID, "customerId": request.CustomerID},
	})
	return request, nil
}

// TransitionState moves a request to done or back to in-progress. The first
// move to done credits the provider with a completed job.
func (uc *RequestUseCase) TransitionState(ctx context.Context, id, state, providerID string) (*entity.Request, error) {
	switch state {
	case entity.RequestStateDone:
		return uc.MarkDone(ctx, id, providerID)
	case entity.RequestStateInProgress:
		return uc.requestRepo.Reopen(ctx, id)
	default:
		return nil, errors.Validation(fmt.Sprintf("state must be %q or %q", entity.RequestStateInProgress, entity.RequestStateDone))
	}
}

func (uc *RequestUseCase) MarkDone(ctx context.Context, id, providerID string) (*entity.Request, error) {
	if providerID == "" {
		current, err := uc.requestRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !current.IsAssigned() {
			return nil, errors.NoOp("No in-progress request found for this provider")
		}
		providerID = current.ProviderID
	}

	request, credited, err := uc.requestRepo.MarkDone(ctx, id, providerID)
	if err != nil {
		return nil, err
	}
	if !credited {
		return request, nil
	}
	if err := uc.providerRepo.IncrementStats(ctx, providerID, 1, 0); err != nil {
		uc.log.Error().Err(err).Str("provider", providerID).Msg("failed to credit completed job")
	}
	return request, nil
}

// CancelRequest deletes a request and its bids. Reviews and chats stay.
func (uc *RequestUseCase) CancelRequest(ctx context.Context, id string) (*entity.Request, error) {
	request, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.requestRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	removed, err := uc.bidRepo.DeleteByRequest(ctx, id)
	if err != nil {
		uc.log.Error().Err(err).Str("request", id).Msg("failed to delete bids of cancelled request")
	} else if removed > 0 {
		uc.log.Debug().Str("request", id).Int("bids", removed).Msg("bids removed")
	}
	return request, nil
}
