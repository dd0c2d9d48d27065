package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servibid/internal/domain/entity"
	"servibid/pkg/errors"
)

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture()
	f.customer(t, "c1")
	ctx := context.Background()

	valid := CreateRequestInput{CustomerID: "c1", Service: "Plumbing", Budget: 200, Date: "2030-01-15", Description: "leak"}

	cases := map[string]func(in *CreateRequestInput){
		"missing service":     func(in *CreateRequestInput) { in.Service = "" },
		"missing description": func(in *CreateRequestInput) { in.Description = " " },
		"zero budget":         func(in *CreateRequestInput) { in.Budget = 0 },
		"negative budget":     func(in *CreateRequestInput) { in.Budget = -5 },
		"bad date":            func(in *CreateRequestInput) { in.Date = "next tuesday" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := f.requests.CreateRequest(ctx, in)
			assert.True(t, errors.Is(err, errors.CodeValidation), "got %v", err)
		})
	}

	in := valid
	in.CustomerID = "ghost"
	_, err := f.requests.CreateRequest(ctx, in)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestCreateRequestAnnouncesToMatchingProviders(t *testing.T) {
	f := newFixture()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	f.provider(t, "p2", "Plumbing", "Painting")
	f.provider(t, "p3", "Painting")

	request := f.request(t, "c1", "Plumbing")

	assert.Equal(t, entity.RequestStateInProgress, request.State)
	assert.False(t, request.Paid)
	assert.Equal(t, "2030-01-15", request.Date.Format("2006-01-02"))

	created := f.notificationsOf(t, "c1", entity.NotificationRequestCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "Your request for Plumbing has been scheduled successfully.", created[0].Message)
	assert.Equal(t, request.ID, created[0].Meta["requestId"])

	assert.Len(t, f.notificationsOf(t, "p1", entity.NotificationNewJob), 1)
	assert.Len(t, f.notificationsOf(t, "p2", entity.NotificationNewJob), 1)
	assert.Empty(t, f.notificationsOf(t, "p3", entity.NotificationNewJob))

	assert.Len(t, f.publisher.find("provider:p1", EventNotification), 1)
	assert.Len(t, f.mailer.sentTo("c1@example.com"), 1)
	assert.Len(t, f.mailer.sentTo("p2@example.com"), 1)
	assert.Empty(t, f.mailer.sentTo("p3@example.com"))
}

func TestCreateRequestSucceedsWhenPushFails(t *testing.T) {
	f := newFixture()
	f.publisher.fail = true
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")

	request := f.request(t, "c1", "Plumbing")

	stored, err := f.store.Requests().GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, stored.ID)
	assert.Len(t, f.notificationsOf(t, "p1", entity.NotificationNewJob), 1, "notifications are stored before the push")
}

func TestBidThenAcceptThenPay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	request := f.request(t, "c1", "Plumbing")

	bid, err := f.bids.PlaceBid(ctx, PlaceBidInput{RequestID: request.ID, ProviderID: "p1", Price: 150, Description: "today"})
	require.NoError(t, err)
	assert.Equal(t, entity.BidStatusPending, bid.Status)

	newBid := f.notificationsOf(t, "c1", entity.NotificationNewBid)
	require.Len(t, newBid, 1)
	assert.Equal(t, "Provider p1 placed a new bid on your request for Plumbing.", newBid[0].Message)
	assert.Len(t, f.publisher.find("customer:c1", EventNewBid), 1)

	rows, err := f.bids.ListBids(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Provider p1", rows[0].ServiceProvider.Name)
	assert.Equal(t, 150.0, rows[0].Price)

	accepted, err := f.requests.UpdateRequest(ctx, request.ID, UpdateRequestInput{ProviderID: ptr("p1")})
	require.NoError(t, err)
	assert.Equal(t, "p1", accepted.ProviderID)
	require.NotNil(t, accepted.Price)
	assert.Equal(t, 150.0, *accepted.Price, "price comes from the bid")
	assert.False(t, accepted.Paid)
	assert.Len(t, f.notificationsOf(t, "p1", entity.NotificationBidAccepted), 1)

	rows, err = f.bids.ListBids(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BidStatusAccepted, rows[0].Status)

	txn, err := f.payments.HandlePaymentSuccess(ctx, PaymentSuccessInput{
		PaymentIntentID: "pi_1", CustomerID: "c1", ProviderID: "p1", RequestID: request.ID, Amount: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCompleted, txn.Status)

	paid, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, entity.RequestStateDone, paid.State)
	assert.Len(t, f.notificationsOf(t, "c1", entity.NotificationPayment), 1)
	assert.Len(t, f.notificationsOf(t, "p1", entity.NotificationPayment), 1)
}

func TestAcceptBidSameProviderIsNoOp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	request := f.request(t, "c1", "Plumbing")

	_, err := f.requests.AcceptBid(ctx, request.ID, "p1", ptr(180.0))
	require.NoError(t, err)
	_, err = f.requests.AcceptBid(ctx, request.ID, "p1", nil)
	require.NoError(t, err)
	again, err := f.requests.AcceptBid(ctx, request.ID, "p1", ptr(180.0))
	require.NoError(t, err)

	assert.Equal(t, 180.0, *again.Price)
	assert.Len(t, f.notificationsOf(t, "p1", entity.NotificationBidAccepted), 1)
}

func TestReassignAllowedUntilPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	f.provider(t, "p2", "Plumbing")
	request := f.request(t, "c1", "Plumbing")

	_, err := f.requests.AcceptBid(ctx, request.ID, "p1", ptr(100.0))
	require.NoError(t, err)
	reassigned, err := f.requests.AcceptBid(ctx, request.ID, "p2", ptr(120.0))
	require.NoError(t, err)
	assert.Equal(t, "p2", reassigned.ProviderID)

	_, err = f.payments.HandlePaymentSuccess(ctx, PaymentSuccessInput{
		PaymentIntentID: "pi_1", CustomerID: "c1", ProviderID: "p2", RequestID: request.ID, Amount: 120,
	})
	require.NoError(t, err)

	_, err = f.requests.AcceptBid(ctx, request.ID, "p1", ptr(90.0))
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
}

func TestReassignRejectedAfterCompletion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	f.provider(t, "p2", "Plumbing")
	request := f.request(t, "c1", "Plumbing")

	_, err := f.requests.AcceptBid(ctx, request.ID, "p1", ptr(100.0))
	require.NoError(t, err)
	_, err = f.requests.MarkDone(ctx, request.ID, "p1")
	require.NoError(t, err)

	_, err = f.requests.AcceptBid(ctx, request.ID, "p2", ptr(90.0))
	assert.True(t, errors.Is(err, errors.CodeInvalidState))

	_, err = f.requests.TransitionState(ctx, request.ID, entity.RequestStateInProgress, "")
	require.NoError(t, err)
	_, err = f.requests.AcceptBid(ctx, request.ID, "p2", ptr(90.0))
	assert.True(t, errors.Is(err, errors.CodeInvalidState), "reopening does not release the credited provider")

	repriced, err := f.requests.AcceptBid(ctx, request.ID, "p1", ptr(120.0))
	require.NoError(t, err)
	assert.Equal(t, 120.0, *repriced.Price)

	_, err = f.payments.HandlePaymentSuccess(ctx, PaymentSuccessInput{
		PaymentIntentID: "pi_1", CustomerID: "c1", ProviderID: "p1", RequestID: request.ID, Amount: 120,
	})
	require.NoError(t, err)

	first, _ := f.store.Providers().GetByID(ctx, "p1")
	assert.Equal(t, 1, first.JobsDone)
	assert.Equal(t, 120.0, first.Revenue)
	second, _ := f.store.Providers().GetByID(ctx, "p2")
	assert.Equal(t, 0, second.JobsDone)
}

func TestPlaceBidRejectsAssignedRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	f.provider(t, "p2", "Plumbing")
	request := f.request(t, "c1", "Plumbing")

	_, err := f.bids.PlaceBid(ctx, PlaceBidInput{RequestID: request.ID, ProviderID: "ghost", Price: 10})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	_, err = f.bids.PlaceBid(ctx, PlaceBidInput{RequestID: "missing", ProviderID: "p1", Price: 10})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = f.requests.AcceptBid(ctx, request.ID, "p1", ptr(100.0))
	require.NoError(t, err)

	_, err = f.bids.PlaceBid(ctx, PlaceBidInput{RequestID: request.ID, ProviderID: "p2", Price: 90})
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
	assert.Equal(t, 0, f.store.BidCount())
}

func TestMarkSeenCountsBids(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	f.provider(t, "p2", "Plumbing")
	request := f.request(t, "c1", "Plumbing")

	for _, p := range []string{"p1", "p2"} {
		_, err := f.bids.PlaceBid(ctx, PlaceBidInput{RequestID: request.ID, ProviderID: p, Price: 100})
		require.NoError(t, err)
	}

	n, err := f.bids.MarkSeen(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = f.bids.MarkSeen(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestListBidsFallsBackForMissingProvider(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	request := f.request(t, "c1", "Plumbing")
	require.NoError(t, f.store.Bids().CreateForOpenRequest(ctx, &entity.Bid{RequestID: request.ID, ProviderID: "gone", Price: 50}))

	rows, err := f.bids.ListBids(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, unknownProviderName, rows[0].ServiceProvider.Name)
}

func TestTransitionState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	request := f.request(t, "c1", "Plumbing")

	_, err := f.requests.TransitionState(ctx, request.ID, entity.RequestStateDone, "")
	assert.True(t, errors.Is(err, errors.CodeNoOp), "unassigned request cannot be done")

	_, err = f.requests.AcceptBid(ctx, request.ID, "p1", ptr(100.0))
	require.NoError(t, err)

	_, err = f.requests.TransitionState(ctx, request.ID, entity.RequestStateDone, "p2")
	assert.True(t, errors.Is(err, errors.CodeNoOp))

	done, err := f.requests.TransitionState(ctx, request.ID, entity.RequestStateDone, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStateDone, done.State)

	_, err = f.requests.TransitionState(ctx, request.ID, entity.RequestStateDone, "p1")
	assert.True(t, errors.Is(err, errors.CodeNoOp))

	provider, err := f.store.Providers().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.JobsDone)

	reopened, err := f.requests.TransitionState(ctx, request.ID, entity.RequestStateInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStateInProgress, reopened.State)

	for i := 0; i < 3; i++ {
		_, err = f.requests.TransitionState(ctx, request.ID, entity.RequestStateDone, "p1")
		require.NoError(t, err)
		_, err = f.requests.TransitionState(ctx, request.ID, entity.RequestStateInProgress, "")
		require.NoError(t, err)
	}
	provider, err = f.store.Providers().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.JobsDone, "reopening and finishing again credits nothing")

	_, err = f.requests.TransitionState(ctx, request.ID, "archived", "")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestCancelRequestRemovesBids(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	request := f.request(t, "c1", "Plumbing")
	_, err := f.bids.PlaceBid(ctx, PlaceBidInput{RequestID: request.ID, ProviderID: "p1", Price: 100})
	require.NoError(t, err)

	cancelled, err := f.requests.CancelRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, cancelled.ID)
	assert.Equal(t, 0, f.store.BidCount())

	_, err = f.requests.CancelRequest(ctx, request.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestListAvailable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	open := f.request(t, "c1", "Plumbing")
	taken := f.request(t, "c1", "Plumbing")
	painting := f.request(t, "c1", "Painting")
	_, err := f.requests.AcceptBid(ctx, taken.ID, "p1", ptr(50.0))
	require.NoError(t, err)

	available, err := f.requests.ListAvailable(ctx, []string{"Plumbing"})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	available, err = f.requests.ListAvailable(ctx, []string{"Plumbing", "Painting"})
	require.NoError(t, err)
	assert.Len(t, available, 2)
	assert.Equal(t, painting.ID, available[0].ID, "newest first")

	_, err = f.requests.ListAvailable(ctx, nil)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}
