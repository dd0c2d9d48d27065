package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/internal/domain/service"
	"servibid/internal/infrastructure/email"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
	"servibid/pkg/metrics"
)

const (
	fallbackCardLast4 = "9999"
	fallbackCardBrand = "unknown"
)

type PaymentUseCase struct {
	gateway         service.PaymentGatewayService
	customerRepo    repository.CustomerRepository
	providerRepo    repository.ProviderRepository
	transactionRepo repository.TransactionRepository
	notifier        *NotificationUseCase
	mailer          Mailer
	currency        string
	log             zerolog.Logger
}

func NewPaymentUseCase(
	gateway service.PaymentGatewayService,
	customerRepo repository.CustomerRepository,
	providerRepo repository.ProviderRepository,
	transactionRepo repository.TransactionRepository,
	notifier *NotificationUseCase,
	mailer Mailer,
	currency string,
) *PaymentUseCase {
	return &PaymentUseCase{
		gateway:         gateway,
		customerRepo:    customerRepo,
		providerRepo:    providerRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
		mailer:          mailer,
		currency:        strings.ToLower(currency),
		log:             logger.WithComponent("payments"),
	}
}

type CreatePaymentIntentInput struct {
	Amount            float64
	CustomerID        string
	ProviderID        string
	RequestID         string
	SavePaymentMethod bool
}

type PaymentSuccessInput struct {
	PaymentIntentID string
	CustomerID      string
	ProviderID      string
	RequestID       string
	Amount          float64
}

// CreateGatewayCustomer registers the customer with the gateway once and
// stores the gateway id on the customer.
func (uc *PaymentUseCase) CreateGatewayCustomer(ctx context.Context, customerID, emailAddr, name string) (string, error) {
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	if customer.StripeCustomerID != "" {
		return customer.StripeCustomerID, nil
	}

	if emailAddr == "" {
		emailAddr = customer.Email
	}
	if name == "" {
		name = customer.Name
	}
	gatewayID, err := uc.gateway.CreateCustomer(ctx, emailAddr, name)
	if err != nil {
		return "", err
	}

	customer.StripeCustomerID = gatewayID
	if err := uc.customerRepo.Update(ctx, customer); err != nil {
		return "", err
	}
	return gatewayID, nil
}

func (uc *PaymentUseCase) gatewayCustomer(ctx context.Context, customerID string) (*entity.Customer, error) {
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.StripeCustomerID == "" {
		return nil, errors.Validation("Customer has no payment profile")
	}
	return customer, nil
}

func (uc *PaymentUseCase) CreateEphemeralKey(ctx context.Context, customerID string) (string, error) {
	customer, err := uc.gatewayCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}
	return uc.gateway.CreateEphemeralKey(ctx, customer.StripeCustomerID)
}

func (uc *PaymentUseCase) CreatePaymentIntent(ctx context.Context, input CreatePaymentIntentInput) (*service.PaymentIntent, error) {
	if input.Amount <= 0 {
		return nil, errors.Validation("amount must be greater than zero")
	}
	customer, err := uc.gatewayCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	return uc.gateway.CreatePaymentIntent(ctx, service.PaymentIntentRequest{
		Amount:            input.Amount,
		Currency:          uc.currency,
		GatewayCustomerID: customer.StripeCustomerID,
		SavePaymentMethod: input.SavePaymentMethod,
		Metadata: map[string]string{
			"customerId": input.CustomerID,
			"providerId": input.ProviderID,
			"requestId":  input.RequestID,
		},
	})
}

// HandlePaymentSuccess records a captured payment. Recording is idempotent
// per request: a replay returns the stored transaction without crediting the
// provider or notifying anyone again.
func (uc *PaymentUseCase) HandlePaymentSuccess(ctx context.Context, input PaymentSuccessInput) (*entity.Transaction, error) {
	if input.PaymentIntentID == "" || input.CustomerID == "" || input.ProviderID == "" || input.RequestID == "" {
		return nil, errors.Validation("paymentIntentId, customerId, providerId and requestId are required")
	}
	if input.Amount <= 0 {
		return nil, errors.Validation("amount must be greater than zero")
	}

	card := service.CardDetails{Last4: fallbackCardLast4, Brand: fallbackCardBrand}
	if details, err := uc.gateway.GetCardDetails(ctx, input.PaymentIntentID); err != nil {
		uc.log.Warn().Err(err).Str("paymentIntent", input.PaymentIntentID).Msg("card details unavailable")
	} else {
		if details.Last4 != "" {
			card.Last4 = details.Last4
		}
		if details.Brand != "" {
			card.Brand = details.Brand
		}
	}

	outcome, err := uc.transactionRepo.RecordPayment(ctx, &entity.Transaction{
		CustomerID:      input.CustomerID,
		ProviderID:      input.ProviderID,
		RequestID:       input.RequestID,
		PaymentIntentID: input.PaymentIntentID,
		Amount:          input.Amount,
		Currency:        uc.currency,
		CardLast4:       card.Last4,
		CardBrand:       card.Brand,
	})
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("failed").Inc()
		uc.log.Error().Err(err).
			Str("request", input.RequestID).
			Str("paymentIntent", input.PaymentIntentID).
			Msg("captured payment could not be recorded")
		return nil, err
	}

	txn := outcome.Transaction
	if !outcome.Created {
		metrics.PaymentsTotal.WithLabelValues("replayed").Inc()
		return txn, nil
	}
	metrics.PaymentsTotal.WithLabelValues("recorded").Inc()

	jobs := 0
	if outcome.CompletedNow {
		jobs = 1
	}
	if err := uc.providerRepo.IncrementStats(ctx, txn.ProviderID, jobs, txn.Amount); err != nil {
		uc.log.Error().Err(err).Str("provider", txn.ProviderID).Msg("failed to credit provider")
	}

	uc.announcePayment(ctx, txn, outcome.Request)
	return txn, nil
}

func (uc *PaymentUseCase) announcePayment(ctx context.Context, txn *entity.Transaction, request *entity.Request) {
	amount := fmt.Sprintf("%s %.2f", strings.ToUpper(txn.Currency), txn.Amount)
	meta := map[string]interface{}{"requestId": txn.RequestID, "transactionId": txn.ID}

	uc.notifier.NotifyQuietly(ctx, NotifyInput{
		Role:    entity.RoleCustomer,
		UserID:  txn.CustomerID,
		Type:    entity.NotificationPayment,
		Message: fmt.Sprintf("Your payment of %s for %q has been received.", amount, request.Service),
		Meta:    meta,
	})
	uc.notifier.NotifyQuietly(ctx, NotifyInput{
		Role:    entity.RoleProvider,
		UserID:  txn.ProviderID,
		Type:    entity.NotificationPayment,
		Message: fmt.Sprintf("Payment received for %q: %s.", request.Service, amount),
		Meta:    meta,
	})

	data := email.Data{
		Service:   request.Service,
		Currency:  txn.Currency,
		Amount:    txn.Amount,
		Date:      txn.CreatedAt,
		CardBrand: txn.CardBrand,
		CardLast4: txn.CardLast4,
	}
	customer, custErr := uc.customerRepo.GetByID(ctx, txn.CustomerID)
	provider, provErr := uc.providerRepo.GetByID(ctx, txn.ProviderID)
	if custErr == nil {
		receipt := data
		receipt.Name = customer.Name
		if provErr == nil {
			receipt.Counterparty = provider.Name
		}
		queueEmail(uc.mailer, email.PaymentReceipt, customer.Email, receipt)
	}
	if provErr == nil {
		received := data
		received.Name = provider.Name
		if custErr == nil {
			received.Counterparty = customer.Name
		}
		queueEmail(uc.mailer, email.PaymentReceived, provider.Email, received)
	}
}

func (uc *PaymentUseCase) TransactionsByCustomer(ctx context.Context, customerID string) ([]*entity.Transaction, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errors.Validation("Invalid customer id")
	}
	return uc.transactionRepo.ListByCustomer(ctx, customerID)
}

func (uc *PaymentUseCase) TransactionByRequest(ctx context.Context, requestID string) (*entity.Transaction, error) {
	return uc.transactionRepo.GetByRequestID(ctx, requestID)
}
