package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo   repository.ReviewRepository
	requestRepo  repository.RequestRepository
	providerRepo repository.ProviderRepository
	notifier     *NotificationUseCase
	log          zerolog.Logger
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	requestRepo repository.RequestRepository,
	providerRepo repository.ProviderRepository,
	notifier *NotificationUseCase,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:   reviewRepo,
		requestRepo:  requestRepo,
		providerRepo: providerRepo,
		notifier:     notifier,
		log:          logger.WithComponent("reviews"),
	}
}

type CreateReviewInput struct {
	RequestID  string
	ProviderID string
	CustomerID string
	Rating     int
	Title      string
	Comment    string
}

// ProviderReviews is one page of a provider's reviews. Limit is the page
// size actually applied after defaults.
type ProviderReviews struct {
	Reviews       []*entity.Review
	AverageRating float64
	Total         int64
	Page          int
	Limit         int
}

var reviewSorts = map[string]bool{
	entity.ReviewSortNewest:  true,
	entity.ReviewSortOldest:  true,
	entity.ReviewSortHighest: true,
	entity.ReviewSortLowest:  true,
}

// CreateReview stores a review and links it to its request. A request keeps
// at most one review: a second attempt fails with Conflict. When linking
// fails the stored review is deleted again.
func (uc *ReviewUseCase) CreateReview(ctx context.Context, input CreateReviewInput) (*entity.Review, error) {
	if input.RequestID == "" || input.ProviderID == "" || input.CustomerID == "" ||
		strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Comment) == "" {
		return nil, errors.Validation("Missing required fields")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.Validation("rating must be between 1 and 5")
	}

	if _, err := uc.reviewRepo.GetByRequestID(ctx, input.RequestID); err == nil {
		return nil, errors.Conflict("A review already exists for this request")
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	review := &entity.Review{
		RequestID:  input.RequestID,
		ProviderID: input.ProviderID,
		CustomerID: input.CustomerID,
		Rating:     input.Rating,
		Title:      strings.TrimSpace(input.Title),
		Comment:    strings.TrimSpace(input.Comment),
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.AttachReview(ctx, review.RequestID, review.ProviderID, review.ID); err != nil {
		if delErr := uc.reviewRepo.Delete(ctx, review.ID); delErr != nil {
			uc.log.Error().Err(delErr).Str("review", review.ID).Msg("failed to roll back review")
		}
		return nil, err
	}

	uc.refreshRating(ctx, review.ProviderID)

	service := "your service"
	if request, err := uc.requestRepo.GetByID(ctx, review.RequestID); err == nil {
		service = request.Service
	}
	uc.notifier.NotifyQuietly(ctx, NotifyInput{
		Role:    entity.RoleProvider,
		UserID:  review.ProviderID,
		Type:    entity.NotificationReview,
		Message: fmt.Sprintf("You received a new review for %s from a customer.", service),
		Meta:    map[string]interface{}{"reviewId": review.ID, "customerId": review.CustomerID},
	})
	return review, nil
}

// DeleteReview removes the review of a request. It reports false when the
// request had none.
func (uc *ReviewUseCase) DeleteReview(ctx context.Context, requestID string) (bool, error) {
	review, err := uc.reviewRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := uc.reviewRepo.Delete(ctx, review.ID); err != nil {
		return false, err
	}
	if err := uc.requestRepo.DetachReview(ctx, requestID, review.ID); err != nil {
		return false, err
	}

	uc.refreshRating(ctx, review.ProviderID)
	return true, nil
}

func (uc *ReviewUseCase) refreshRating(ctx context.Context, providerID string) {
	avg, err := uc.reviewRepo.AverageRating(ctx, providerID)
	if err == nil {
		err = uc.providerRepo.SetRating(ctx, providerID, avg)
	}
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		uc.log.Error().Err(err).Str("provider", providerID).Msg("failed to refresh rating")
	}
}

func (uc *ReviewUseCase) ListByProvider(ctx context.Context, providerID, sortBy string, page, limit int) (*ProviderReviews, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, errors.Validation("Invalid provider ID")
	}
	if sortBy == "" {
		sortBy = entity.ReviewSortNewest
	}
	if !reviewSorts[sortBy] {
		return nil, errors.Validation("sort must be newest, oldest, highest or lowest")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	reviews, total, err := uc.reviewRepo.ListByProvider(ctx, providerID, sortBy, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	avg, err := uc.reviewRepo.AverageRating(ctx, providerID)
	if err != nil {
		return nil, err
	}

	return &ProviderReviews{
		Reviews:       reviews,
		AverageRating: avg,
		Total:         total,
		Page:          page,
		Limit:         limit,
	}, nil
}

func (uc *ReviewUseCase) ExistingRequestIDs(ctx context.Context, requestIDs []string) ([]string, error) {
	if len(requestIDs) == 0 {
		return []string{}, nil
	}
	return uc.reviewRepo.ExistingRequestIDs(ctx, requestIDs)
}
