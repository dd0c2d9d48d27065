package repository

import (
	"context"

	"servibid/internal/domain/entity"
)

// Assignment reports the result of RequestRepository.AssignProvider.
type Assignment struct {
	Request *entity.Request
	// Changed is false when the provider and price were already set.
	Changed          bool
	PreviousProvider string
}

type RequestRepository interface {
	Create(ctx context.Context, request *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Request, error)
	ListByProvider(ctx context.Context, providerID string) ([]*entity.Request, error)
	// ListAvailable returns in-progress, unassigned requests for any of the services.
	ListAvailable(ctx context.Context, services []string) ([]*entity.Request, error)

	// AssignProvider sets providerId and price and resets paid in a single
	// atomic step. It fails with InvalidState when a different provider is
	// given and the request is paid or its job was already credited.
	AssignProvider(ctx context.Context, id, providerID string, price *float64) (*Assignment, error)
	// MarkDone moves an in-progress request assigned to providerID to done.
	// It fails with NoOp when no such request exists in that state. The bool
	// reports whether this call is the first completion of the request.
	MarkDone(ctx context.Context, id, providerID string) (*entity.Request, bool, error)
	// Reopen moves a done, unpaid request back to in-progress.
	Reopen(ctx context.Context, id string) (*entity.Request, error)
	// AttachReview sets reviewId when the request exists, is assigned to
	// providerID and has no review yet.
	AttachReview(ctx context.Context, id, providerID, reviewID string) error
	// DetachReview clears reviewId only if it still equals reviewID.
	DetachReview(ctx context.Context, id, reviewID string) error
	Patch(ctx context.Context, id string, patch entity.RequestPatch) (*entity.Request, error)
	Delete(ctx context.Context, id string) error
}

type BidRepository interface {
	// CreateForOpenRequest inserts the bid only while the request exists and
	// is still unassigned and in progress.
	CreateForOpenRequest(ctx context.Context, bid *entity.Bid) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.Bid, error)
	FindByRequestAndProvider(ctx context.Context, requestID, providerID string) (*entity.Bid, error)
	MarkSeen(ctx context.Context, requestID string) (int, error)
	// Resolve marks the accepted provider's bids accepted and all others rejected.
	Resolve(ctx context.Context, requestID, acceptedProviderID string) error
	DeleteByRequest(ctx context.Context, requestID string) (int, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByRequestID(ctx context.Context, requestID string) (*entity.Review, error)
	Delete(ctx context.Context, id string) error
	ListByProvider(ctx context.Context, providerID, sort string, limit, offset int) ([]*entity.Review, int64, error)
	AverageRating(ctx context.Context, providerID string) (float64, error)
	// ExistingRequestIDs returns the subset of requestIDs that have a review.
	ExistingRequestIDs(ctx context.Context, requestIDs []string) ([]string, error)
}

type TransactionRepository interface {
	// RecordPayment stores txn and sets the request paid and done in one atomic
	// step. When the request already has a transaction, that one is returned
	// with Created false.
	RecordPayment(ctx context.Context, txn *entity.Transaction) (*entity.PaymentOutcome, error)
	GetByRequestID(ctx context.Context, requestID string) (*entity.Transaction, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Transaction, error)
}
