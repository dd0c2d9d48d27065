package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servibid/internal/domain/entity"
	"servibid/pkg/errors"
)

func reviewedRequest(t *testing.T, f *fixture) *entity.Request {
	t.Helper()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")
	request := f.request(t, "c1", "Plumbing")
	_, err := f.requests.AcceptBid(context.Background(), request.ID, "p1", ptr(100.0))
	require.NoError(t, err)
	return request
}

func TestCreateReviewLinksRequestAndRating(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := reviewedRequest(t, f)

	review, err := f.reviews.CreateReview(ctx, CreateReviewInput{
		RequestID: request.ID, ProviderID: "p1", CustomerID: "c1", Rating: 4, Title: "Good", Comment: "Fixed fast",
	})
	require.NoError(t, err)

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, stored.ReviewID)

	provider, err := f.store.Providers().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, provider.Rating)

	notes := f.notificationsOf(t, "p1", entity.NotificationReview)
	require.Len(t, notes, 1)
	assert.Equal(t, "You received a new review for Plumbing from a customer.", notes[0].Message)
}

func TestSecondReviewIsRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := reviewedRequest(t, f)
	input := CreateReviewInput{RequestID: request.ID, ProviderID: "p1", CustomerID: "c1", Rating: 5, Title: "A", Comment: "B"}

	_, err := f.reviews.CreateReview(ctx, input)
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, input)
	assert.True(t, errors.Is(err, errors.CodeConflict))
	assert.Equal(t, 1, f.store.ReviewCount())
}

func TestCreateReviewRollsBackWhenRequestMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.provider(t, "p1")

	_, err := f.reviews.CreateReview(ctx, CreateReviewInput{
		RequestID: "missing", ProviderID: "p1", CustomerID: "c1", Rating: 3, Title: "A", Comment: "B",
	})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.Equal(t, 0, f.store.ReviewCount())
	assert.Empty(t, f.notificationsOf(t, "p1", entity.NotificationReview))
}

func TestCreateReviewRollsBackOnProviderMismatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := reviewedRequest(t, f)
	f.provider(t, "p2")

	_, err := f.reviews.CreateReview(ctx, CreateReviewInput{
		RequestID: request.ID, ProviderID: "p2", CustomerID: "c1", Rating: 1, Title: "A", Comment: "B",
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
	assert.Equal(t, 0, f.store.ReviewCount())
}

func TestCreateReviewValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.reviews.CreateReview(ctx, CreateReviewInput{RequestID: "r", ProviderID: "p", CustomerID: "c", Rating: 6, Title: "A", Comment: "B"})
	assert.True(t, errors.Is(err, errors.CodeValidation))
	_, err = f.reviews.CreateReview(ctx, CreateReviewInput{RequestID: "r", ProviderID: "p", CustomerID: "c", Rating: 3, Comment: "B"})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestDeleteReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := reviewedRequest(t, f)

	deleted, err := f.reviews.DeleteReview(ctx, request.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "nothing to delete")

	_, err = f.reviews.CreateReview(ctx, CreateReviewInput{RequestID: request.ID, ProviderID: "p1", CustomerID: "c1", Rating: 2, Title: "A", Comment: "B"})
	require.NoError(t, err)

	deleted, err = f.reviews.DeleteReview(ctx, request.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ReviewID)
	provider, _ := f.store.Providers().GetByID(ctx, "p1")
	assert.Equal(t, 0.0, provider.Rating)

	_, err = f.reviews.CreateReview(ctx, CreateReviewInput{RequestID: request.ID, ProviderID: "p1", CustomerID: "c1", Rating: 5, Title: "A", Comment: "B"})
	assert.NoError(t, err, "a request can be reviewed again after deletion")
}

func TestUpdateRequestReviewIDMustMatchStoredReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := reviewedRequest(t, f)

	_, err := f.requests.UpdateRequest(ctx, request.ID, UpdateRequestInput{ReviewID: ptr("no-such-review")})
	assert.True(t, errors.Is(err, errors.CodeValidation), "no review exists yet")

	review, err := f.reviews.CreateReview(ctx, CreateReviewInput{RequestID: request.ID, ProviderID: "p1", CustomerID: "c1", Rating: 4, Title: "A", Comment: "B"})
	require.NoError(t, err)

	_, err = f.requests.UpdateRequest(ctx, request.ID, UpdateRequestInput{ReviewID: ptr("no-such-review")})
	assert.True(t, errors.Is(err, errors.CodeValidation))
	_, err = f.requests.UpdateRequest(ctx, request.ID, UpdateRequestInput{ReviewID: ptr("")})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, stored.ReviewID, "the real review stays linked")

	same, err := f.requests.UpdateRequest(ctx, request.ID, UpdateRequestInput{ReviewID: ptr(review.ID)})
	require.NoError(t, err)
	assert.Equal(t, review.ID, same.ReviewID)

	deleted, err := f.reviews.DeleteReview(ctx, request.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	_, err = f.requests.UpdateRequest(ctx, request.ID, UpdateRequestInput{ReviewID: ptr(review.ID)})
	assert.True(t, errors.Is(err, errors.CodeValidation), "a deleted review cannot be relinked")

	stored, err = f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ReviewID)
}

func TestUpdateRequestRelinksDetachedReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := reviewedRequest(t, f)

	review, err := f.reviews.CreateReview(ctx, CreateReviewInput{RequestID: request.ID, ProviderID: "p1", CustomerID: "c1", Rating: 5, Title: "A", Comment: "B"})
	require.NoError(t, err)
	require.NoError(t, f.store.Requests().DetachReview(ctx, request.ID, review.ID))

	linked, err := f.requests.UpdateRequest(ctx, request.ID, UpdateRequestInput{ReviewID: ptr(review.ID)})
	require.NoError(t, err)
	assert.Equal(t, review.ID, linked.ReviewID)
}

func TestListReviewsByProvider(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.customer(t, "c1")
	f.provider(t, "p1", "Plumbing")

	for _, rating := range []int{3, 5, 1} {
		request := f.request(t, "c1", "Plumbing")
		_, err := f.requests.AcceptBid(ctx, request.ID, "p1", ptr(10.0))
		require.NoError(t, err)
		_, err = f.reviews.CreateReview(ctx, CreateReviewInput{RequestID: request.ID, ProviderID: "p1", CustomerID: "c1", Rating: rating, Title: "t", Comment: "c"})
		require.NoError(t, err)
	}

	page, err := f.reviews.ListByProvider(ctx, "p1", entity.ReviewSortHighest, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 3.0, page.AverageRating)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, 5, page.Reviews[0].Rating)
	assert.Equal(t, 3, page.Reviews[1].Rating)

	page, err = f.reviews.ListByProvider(ctx, "p1", "", 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, 3, page.Reviews[0].Rating, "default sort is newest first")

	_, err = f.reviews.ListByProvider(ctx, "p1", "random", 1, 10)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}
