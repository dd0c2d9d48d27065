package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/internal/infrastructure/email"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

const unknownProviderName = "Unknown Provider"

type BidUseCase struct {
	bidRepo      repository.BidRepository
	requestRepo  repository.RequestRepository
	customerRepo repository.CustomerRepository
	providerRepo repository.ProviderRepository
	notifier     *NotificationUseCase
	mailer       Mailer
	currency     string
	log          zerolog.Logger
}

func NewBidUseCase(
	bidRepo repository.BidRepository,
	requestRepo repository.RequestRepository,
	customerRepo repository.CustomerRepository,
	providerRepo repository.ProviderRepository,
	notifier *NotificationUseCase,
	mailer Mailer,
	currency string,
) *BidUseCase {
	return &BidUseCase{
		bidRepo:      bidRepo,
		requestRepo:  requestRepo,
		customerRepo: customerRepo,
		providerRepo: providerRepo,
		notifier:     notifier,
		mailer:       mailer,
		currency:     currency,
		log:          logger.WithComponent("bids"),
	}
}

type PlaceBidInput struct {
	RequestID   string
	ProviderID  string
	Price       float64
	Description string
}

// PlaceBid stores a bid on an open request and tells the request owner.
func (uc *BidUseCase) PlaceBid(ctx context.Context, input PlaceBidInput) (*entity.Bid, error) {
	if strings.TrimSpace(input.RequestID) == "" || strings.TrimSpace(input.ProviderID) == "" {
		return nil, errors.Validation("requestId and providerId are required")
	}
	if input.Price <= 0 {
		return nil, errors.Validation("price must be greater than zero")
	}

	provider, err := uc.providerRepo.GetByID(ctx, input.ProviderID)
	if err != nil {
		return nil, err
	}

	bid := &entity.Bid{
		RequestID:   input.RequestID,
		ProviderID:  provider.ID,
		Price:       input.Price,
		Description: input.Description,
		Status:      entity.BidStatusPending,
	}
	if err := uc.bidRepo.CreateForOpenRequest(ctx, bid); err != nil {
		return nil, err
	}

	request, err := uc.requestRepo.GetByID(ctx, bid.RequestID)
	if err != nil {
		uc.log.Warn().Err(err).Str("request", bid.RequestID).Msg("bid stored but request lookup failed")
		return bid, nil
	}

	uc.notifier.Push(entity.RoleCustomer, request.CustomerID, EventNewBid, map[string]interface{}{"requestId": request.ID})
	uc.notifier.NotifyQuietly(ctx, NotifyInput{
		Role:    entity.RoleCustomer,
		UserID:  request.CustomerID,
		Type:    entity.NotificationNewBid,
		Message: fmt.Sprintf("%s placed a new bid on your request for %s.", provider.Name, request.Service),
		Meta: map[string]interface{}{
			"requestId":  request.ID,
			"providerId": provider.ID,
			"bidId":      bid.ID,
		},
	})

	data := email.Data{
		Service:     request.Service,
		Description: bid.Description,
		Currency:    uc.currency,
		Amount:      bid.Price,
		Date:        request.Date,
	}
	if customer, err := uc.customerRepo.GetByID(ctx, request.CustomerID); err == nil {
		received := data
		received.Name = customer.Name
		received.Counterparty = provider.Name
		queueEmail(uc.mailer, email.BidReceived, customer.Email, received)
		data.Counterparty = customer.Name
	}
	data.Name = provider.Name
	queueEmail(uc.mailer, email.BidPlaced, provider.Email, data)

	return bid, nil
}

// ListBids returns a request's bids, each with its provider's summary.
func (uc *BidUseCase) ListBids(ctx context.Context, requestID string) ([]*entity.BidWithProvider, error) {
	bids, err := uc.bidRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	rows := make([]*entity.BidWithProvider, len(bids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutWorkers)
	for i, bid := range bids {
		i, bid := i, bid
		g.Go(func() error {
			row := &entity.BidWithProvider{Bid: bid, ServiceProvider: entity.ProviderSummary{Name: unknownProviderName}}
			provider, err := uc.providerRepo.GetByID(gctx, bid.ProviderID)
			switch {
			case err == nil:
				row.ServiceProvider = provider.Summary()
			case !errors.Is(err, errors.CodeNotFound):
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (uc *BidUseCase) MarkSeen(ctx context.Context, requestID string) (int, error) {
	if strings.TrimSpace(requestID) == "" {
		return 0, errors.Validation("requestId is required")
	}
	return uc.bidRepo.MarkSeen(ctx, requestID)
}
