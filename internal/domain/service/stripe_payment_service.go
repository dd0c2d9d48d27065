package service

import (
	"context"
	"math"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

// StripePaymentService talks to Stripe. Every call is bounded by timeout.
type StripePaymentService struct {
	api     *client.API
	timeout time.Duration
}

func NewStripePaymentService(secretKey string, timeout time.Duration) *StripePaymentService {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripePaymentService{
		api:     api,
		timeout: timeout,
	}
}

func (s *StripePaymentService) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	customer, err := s.api.Customers.New(params)
	if err != nil {
		return "", gatewayError(ctx, "Failed to create payment customer", err)
	}
	return customer.ID, nil
}

func (s *StripePaymentService) CreateEphemeralKey(ctx context.Context, gatewayCustomerID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(gatewayCustomerID),
		StripeVersion: stripe.String(stripe.APIVersion),
	}
	params.Context = ctx

	key, err := s.api.EphemeralKeys.New(params)
	if err != nil {
		return "", gatewayError(ctx, "Failed to create ephemeral key", err)
	}
	return key.Secret, nil
}

func (s *StripePaymentService) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(req.Amount * 100))),
		Currency: stripe.String(req.Currency),
		Customer: stripe.String(req.GatewayCustomerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.SavePaymentMethod {
		params.SetupFutureUsage = stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession))
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}
	params.Context = ctx

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, gatewayError(ctx, "Failed to create payment intent", err)
	}

	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// GetCardDetails reads the card of the first charge made for the intent.
func (s *StripePaymentService) GetCardDetails(ctx context.Context, paymentIntentID string) (*CardDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.ChargeListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := s.api.Charges.List(params)
	for iter.Next() {
		charge := iter.Charge()
		if charge.PaymentMethodDetails == nil || charge.PaymentMethodDetails.Card == nil {
			continue
		}
		return &CardDetails{
			Last4: charge.PaymentMethodDetails.Card.Last4,
			Brand: string(charge.PaymentMethodDetails.Card.Brand),
		}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, gatewayError(ctx, "Failed to read payment card", err)
	}
	return nil, errors.NotFound("Payment card", nil)
}

func gatewayError(ctx context.Context, message string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		err = context.DeadlineExceeded
	}
	logger.Error("%s: %v", message, err)
	return errors.FromUpstream(message, err)
}
