package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/service"
	"servibid/pkg/errors"
)

func assignedRequest(t *testing.T, f *fixture) *entity.Request {
	t.Helper()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	request := f.request(t, "c1", "Plumbing")
	_, err := f.requests.AcceptBid(context.Background(), request.ID, "p1", ptr(150.0))
	require.NoError(t, err)
	return request
}

func TestHandlePaymentSuccessIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := assignedRequest(t, f)
	f.gateway.SetCard("pi_1", service.CardDetails{Last4: "4242", Brand: "visa"})

	input := PaymentSuccessInput{PaymentIntentID: "pi_1", CustomerID: "c1", ProviderID: "p1", RequestID: request.ID, Amount: 150}
	first, err := f.payments.HandlePaymentSuccess(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "4242", first.CardLast4)
	assert.Equal(t, "visa", first.CardBrand)
	assert.Equal(t, "aed", first.Currency)

	second, err := f.payments.HandlePaymentSuccess(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.TransactionCount())

	provider, err := f.store.Providers().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.JobsDone)
	assert.Equal(t, 150.0, provider.Revenue)

	customerNotes := f.notificationsOf(t, "c1", entity.NotificationPayment)
	require.Len(t, customerNotes, 1, "a replay does not notify again")
	assert.Equal(t, `Your payment of AED 150.00 for "Plumbing" has been received.`, customerNotes[0].Message)
	assert.Len(t, f.notificationsOf(t, "p1", entity.NotificationPayment), 1)

	assert.Len(t, f.mailer.sentTo("c1@example.com"), 2, "request receipt and payment receipt")
	assert.Len(t, f.mailer.sentTo("p1@example.com"), 2, "new job and payment received")
}

func TestHandlePaymentSuccessCardFallback(t *testing.T) {
	f := newFixture()
	request := assignedRequest(t, f)

	txn, err := f.payments.HandlePaymentSuccess(context.Background(), PaymentSuccessInput{
		PaymentIntentID: "pi_unknown", CustomerID: "c1", ProviderID: "p1", RequestID: request.ID, Amount: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, fallbackCardLast4, txn.CardLast4)
	assert.Equal(t, fallbackCardBrand, txn.CardBrand)
}

func TestHandlePaymentSuccessAfterMarkDone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := assignedRequest(t, f)

	_, err := f.requests.MarkDone(ctx, request.ID, "p1")
	require.NoError(t, err)
	_, err = f.payments.HandlePaymentSuccess(ctx, PaymentSuccessInput{
		PaymentIntentID: "pi_1", CustomerID: "c1", ProviderID: "p1", RequestID: request.ID, Amount: 150,
	})
	require.NoError(t, err)

	provider, _ := f.store.Providers().GetByID(ctx, "p1")
	assert.Equal(t, 1, provider.JobsDone, "a job is credited once")
	assert.Equal(t, 150.0, provider.Revenue)
}

func TestHandlePaymentSuccessMissingRequest(t *testing.T) {
	f := newFixture()
	_, err := f.payments.HandlePaymentSuccess(context.Background(), PaymentSuccessInput{
		PaymentIntentID: "pi_1", CustomerID: "c1", ProviderID: "p1", RequestID: "missing", Amount: 10,
	})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.Equal(t, 0, f.store.TransactionCount())
}

func TestPaymentIntentRequiresGatewayCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")

	input := CreatePaymentIntentInput{Amount: 99, CustomerID: "c1", ProviderID: "p1", RequestID: "r1"}
	_, err := f.payments.CreatePaymentIntent(ctx, input)
	assert.True(t, errors.Is(err, errors.CodeValidation))
	_, err = f.payments.CreateEphemeralKey(ctx, "c1")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	gatewayID, err := f.payments.CreateGatewayCustomer(ctx, "c1", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, gatewayID)

	again, err := f.payments.CreateGatewayCustomer(ctx, "c1", "", "")
	require.NoError(t, err)
	assert.Equal(t, gatewayID, again)

	intent, err := f.payments.CreatePaymentIntent(ctx, input)
	require.NoError(t, err)
	assert.Contains(t, intent.ClientSecret, intent.ID)

	key, err := f.payments.CreateEphemeralKey(ctx, "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, key)
}

func TestTransactionQueries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := assignedRequest(t, f)
	_, err := f.payments.HandlePaymentSuccess(ctx, PaymentSuccessInput{
		PaymentIntentID: "pi_1", CustomerID: "c1", ProviderID: "p1", RequestID: request.ID, Amount: 150,
	})
	require.NoError(t, err)

	txns, err := f.payments.TransactionsByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	txn, err := f.payments.TransactionByRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", txn.PaymentIntentID)

	_, err = f.payments.TransactionByRequest(ctx, "other")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
