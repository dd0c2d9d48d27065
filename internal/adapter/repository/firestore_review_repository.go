package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

type firestoreReviewRepository struct {
	firestoreBase
}

func NewFirestoreReviewRepository(client *firestore.Client, timeout time.Duration) repository.ReviewRepository {
	return &firestoreReviewRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.CreatedAt = time.Now()

	if _, err := r.client.Collection(reviewsCollection).Doc(review.ID).Create(ctx, review); err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("Review already exists")
		}
		return storageError("Failed to create review", err)
	}
	return nil
}

func (r *firestoreReviewRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.Review, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	reviews, err := collect[entity.Review](r.client.Collection(reviewsCollection).
		Where("requestId", "==", requestID).
		Limit(1).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to get review", err)
	}
	if len(reviews) == 0 {
		return nil, errors.NotFound("Review", nil)
	}
	return reviews[0], nil
}

func (r *firestoreReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.client.Collection(reviewsCollection).Doc(id).Delete(ctx); err != nil {
		return storageError("Failed to delete review", err)
	}
	return nil
}

func (r *firestoreReviewRepository) ListByProvider(ctx context.Context, providerID, sortBy string, limit, offset int) ([]*entity.Review, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	base := r.client.Collection(reviewsCollection).Where("providerId", "==", providerID)

	total, err := r.count(ctx, base)
	if err != nil {
		return nil, 0, storageError("Failed to count reviews", err)
	}

	var query firestore.Query
	switch sortBy {
	case entity.ReviewSortOldest:
		query = base.OrderBy("createdAt", firestore.Asc)
	case entity.ReviewSortHighest:
		query = base.OrderBy("rating", firestore.Desc).OrderBy("createdAt", firestore.Desc)
	case entity.ReviewSortLowest:
		query = base.OrderBy("rating", firestore.Asc).OrderBy("createdAt", firestore.Desc)
	default:
		query = base.OrderBy("createdAt", firestore.Desc)
	}

	reviews, err := collect[entity.Review](query.Offset(offset).Limit(limit).Documents(ctx))
	if err != nil {
		return nil, 0, storageError("Failed to list reviews", err)
	}
	return reviews, total, nil
}

func (r *firestoreReviewRepository) AverageRating(ctx context.Context, providerID string) (float64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	reviews, err := collect[entity.Review](r.client.Collection(reviewsCollection).
		Where("providerId", "==", providerID).
		Select("rating").
		Documents(ctx))
	if err != nil {
		return 0, storageError("Failed to compute average rating", err)
	}
	return averageRating(reviews), nil
}

func averageRating(reviews []*entity.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews))
}

func (r *firestoreReviewRepository) ExistingRequestIDs(ctx context.Context, requestIDs []string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	existing := make([]string, 0)
	for _, group := range chunk(requestIDs, maxInValues) {
		reviews, err := collect[entity.Review](r.client.Collection(reviewsCollection).
			Where("requestId", "in", group).
			Select("requestId").
			Documents(ctx))
		if err != nil {
			return nil, storageError("Failed to check reviews", err)
		}
		for _, review := range reviews {
			existing = append(existing, review.RequestID)
		}
	}
	return existing, nil
}
