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

type firestoreBidRepository struct {
	firestoreBase
}

func NewFirestoreBidRepository(client *firestore.Client, timeout time.Duration) repository.BidRepository {
	return &firestoreBidRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreBidRepository) CreateForOpenRequest(ctx context.Context, bid *entity.Bid) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	if bid.Status == "" {
		bid.Status = entity.BidStatusPending
	}
	bid.CreatedAt = time.Now()

	requestRef := r.client.Collection(requestsCollection).Doc(bid.RequestID)
	bidRef := r.client.Collection(bidsCollection).Doc(bid.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(requestRef)
		if err != nil {
			if isNotFound(err) {
				return errors.NotFound("Request", err)
			}
			return err
		}
		request, err := requestFromDoc(doc)
		if err != nil {
			return err
		}
		if request.IsAssigned() || request.State != entity.RequestStateInProgress {
			return errors.InvalidState("Request is no longer accepting bids")
		}
		return tx.Create(bidRef, bid)
	})
	return storageError("Failed to place bid", err)
}

func (r *firestoreBidRepository) ListByRequest(ctx context.Context, requestID string) ([]*entity.Bid, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	bids, err := collect[entity.Bid](r.client.Collection(bidsCollection).
		Where("requestId", "==", requestID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list bids", err)
	}
	return bids, nil
}

func (r *firestoreBidRepository) FindByRequestAndProvider(ctx context.Context, requestID, providerID string) (*entity.Bid, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	bids, err := collect[entity.Bid](r.client.Collection(bidsCollection).
		Where("requestId", "==", requestID).
		Where("providerId", "==", providerID).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to find bid", err)
	}
	if len(bids) == 0 {
		return nil, errors.NotFound("Bid", nil)
	}
	return bids[0], nil
}

func (r *firestoreBidRepository) MarkSeen(ctx context.Context, requestID string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	refs, err := collectRefs(r.client.Collection(bidsCollection).
		Where("requestId", "==", requestID).
		Where("seen", "==", false).
		Documents(ctx))
	if err != nil {
		return 0, storageError("Failed to list unseen bids", err)
	}

	updated, err := r.bulkUpdate(ctx, refs, []firestore.Update{{Path: "seen", Value: true}})
	if err != nil {
		return updated, storageError("Failed to mark bids seen", err)
	}
	return updated, nil
}

func (r *firestoreBidRepository) Resolve(ctx context.Context, requestID, acceptedProviderID string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	bids, err := collect[entity.Bid](r.client.Collection(bidsCollection).
		Where("requestId", "==", requestID).
		Documents(ctx))
	if err != nil {
		return storageError("Failed to list bids", err)
	}

	var accepted, rejected []*firestore.DocumentRef
	for _, bid := range bids {
		ref := r.client.Collection(bidsCollection).Doc(bid.ID)
		if bid.ProviderID == acceptedProviderID {
			accepted = append(accepted, ref)
		} else if bid.Status != entity.BidStatusRejected {
			rejected = append(rejected, ref)
		}
	}

	if _, err := r.bulkUpdate(ctx, accepted, []firestore.Update{{Path: "status", Value: entity.BidStatusAccepted}}); err != nil {
		return storageError("Failed to mark accepted bid", err)
	}
	if _, err := r.bulkUpdate(ctx, rejected, []firestore.Update{{Path: "status", Value: entity.BidStatusRejected}}); err != nil {
		return storageError("Failed to mark rejected bids", err)
	}
	return nil
}

func (r *firestoreBidRepository) DeleteByRequest(ctx context.Context, requestID string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	refs, err := collectRefs(r.client.Collection(bidsCollection).
		Where("requestId", "==", requestID).
		Documents(ctx))
	if err != nil {
		return 0, storageError("Failed to list bids", err)
	}

	deleted, err := r.bulkDelete(ctx, refs)
	if err != nil {
		return deleted, storageError("Failed to delete bids", err)
	}
	return deleted, nil
}
