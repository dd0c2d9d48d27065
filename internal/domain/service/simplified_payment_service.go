package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

// PaymentIntentRequest describes a charge for one request.
type PaymentIntentRequest struct {
	Amount            float64
	Currency          string
	GatewayCustomerID string
	SavePaymentMethod bool
	Metadata          map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// CardDetails is the card metadata of a captured payment.
type CardDetails struct {
	Last4 string
	Brand string
}

// PaymentGatewayService is the capability the payment flow needs from a
// gateway: customers, ephemeral keys, intents and card metadata.
type PaymentGatewayService interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateEphemeralKey(ctx context.Context, gatewayCustomerID string) (string, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	GetCardDetails(ctx context.Context, paymentIntentID string) (*CardDetails, error)
}

// SimplifiedPaymentService is an in-process gateway for development and tests.
// It never moves money.
type SimplifiedPaymentService struct {
	mu      sync.Mutex
	intents map[string]PaymentIntentRequest
	cards   map[string]CardDetails
}

func NewSimplifiedPaymentService() *SimplifiedPaymentService {
	return &SimplifiedPaymentService{
		intents: make(map[string]PaymentIntentRequest),
		cards:   make(map[string]CardDetails),
	}
}

func (s *SimplifiedPaymentService) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	logger.Debug("simplified gateway: creating customer for %s", email)
	return "cus_" + uuid.NewString(), nil
}

func (s *SimplifiedPaymentService) CreateEphemeralKey(ctx context.Context, gatewayCustomerID string) (string, error) {
	if gatewayCustomerID == "" {
		return "", errors.Validation("gateway customer id is required")
	}
	return "ek_test_" + uuid.NewString(), nil
}

func (s *SimplifiedPaymentService) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, errors.Validation("amount must be greater than 0")
	}

	id := "pi_" + uuid.NewString()
	s.mu.Lock()
	s.intents[id] = req
	s.mu.Unlock()

	return &PaymentIntent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, uuid.NewString()[:8]),
	}, nil
}

// SetCard records the card used for an intent so GetCardDetails can return it.
func (s *SimplifiedPaymentService) SetCard(paymentIntentID string, card CardDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[paymentIntentID] = card
}

func (s *SimplifiedPaymentService) GetCardDetails(ctx context.Context, paymentIntentID string) (*CardDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[paymentIntentID]
	if !ok {
		return nil, errors.NotFound("Payment card", nil)
	}
	return &card, nil
}
