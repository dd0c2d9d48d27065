package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

type firestoreRequestRepository struct {
	firestoreBase
}

func NewFirestoreRequestRepository(client *firestore.Client, timeout time.Duration) repository.RequestRepository {
	return &firestoreRequestRepository{firestoreBase: newBase(client, timeout)}
}

func (r *firestoreRequestRepository) ref(id string) *firestore.DocumentRef {
	return r.client.Collection(requestsCollection).Doc(id)
}

func (r *firestoreRequestRepository) Create(ctx context.Context, request *entity.Request) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	if _, err := r.ref(request.ID).Create(ctx, request); err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("Request already exists")
		}
		return storageError("Failed to create request", err)
	}
	return nil
}

func (r *firestoreRequestRepository) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.ref(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Request", err)
		}
		return nil, storageError("Failed to get request", err)
	}
	return requestFromDoc(doc)
}

func requestFromDoc(doc *firestore.DocumentSnapshot) (*entity.Request, error) {
	var request entity.Request
	if err := doc.DataTo(&request); err != nil {
		return nil, errors.Internal("Failed to parse request data", err)
	}
	return &request, nil
}

func (r *firestoreRequestRepository) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Request, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	requests, err := collect[entity.Request](r.client.Collection(requestsCollection).
		Where("customerId", "==", customerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list customer requests", err)
	}
	return requests, nil
}

func (r *firestoreRequestRepository) ListByProvider(ctx context.Context, providerID string) ([]*entity.Request, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	requests, err := collect[entity.Request](r.client.Collection(requestsCollection).
		Where("providerId", "==", providerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list provider requests", err)
	}
	return requests, nil
}

func (r *firestoreRequestRepository) ListAvailable(ctx context.Context, services []string) ([]*entity.Request, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	available := make([]*entity.Request, 0)
	for _, group := range chunk(services, maxInValues) {
		requests, err := collect[entity.Request](r.client.Collection(requestsCollection).
			Where("service", "in", group).
			Where("state", "==", entity.RequestStateInProgress).
			Where("providerId", "==", "").
			Documents(ctx))
		if err != nil {
			return nil, storageError("Failed to list available requests", err)
		}
		available = append(available, requests...)
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].CreatedAt.After(available[j].CreatedAt)
	})
	return available, nil
}

func (r *firestoreRequestRepository) AssignProvider(ctx context.Context, id, providerID string, price *float64) (*repository.Assignment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var assignment *repository.Assignment
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(r.ref(id))
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

		if request.ProviderID == providerID && (price == nil || (request.Price != nil && *request.Price == *price)) {
			assignment = &repository.Assignment{Request: request, PreviousProvider: request.ProviderID}
			return nil
		}
		if request.Paid {
			return errors.InvalidState("Request is already paid and cannot be reassigned")
		}
		if request.JobCredited && request.ProviderID != providerID {
			return errors.InvalidState("Request was completed and cannot be reassigned")
		}

		previous := request.ProviderID
		request.ProviderID = providerID
		if price != nil {
			request.Price = price
		}
		request.Paid = false
		request.UpdatedAt = time.Now()

		assignment = &repository.Assignment{Request: request, Changed: true, PreviousProvider: previous}
		return tx.Update(r.ref(id), []firestore.Update{
			{Path: "providerId", Value: request.ProviderID},
			{Path: "price", Value: request.Price},
			{Path: "paid", Value: false},
			{Path: "updatedAt", Value: request.UpdatedAt},
		})
	})
	if err != nil {
		return nil, storageError("Failed to assign provider", err)
	}
	return assignment, nil
}

func (r *firestoreRequestRepository) MarkDone(ctx context.Context, id, providerID string) (*entity.Request, bool, error) {
	var credited bool
	request, err := r.transition(ctx, id, func(request *entity.Request) ([]firestore.Update, error) {
		// The closure may be retried by the transaction runner.
		credited = false
		if request.ProviderID != providerID || request.State != entity.RequestStateInProgress {
			return nil, errors.NoOp("No in-progress request found for this provider")
		}
		request.State = entity.RequestStateDone
		updates := []firestore.Update{{Path: "state", Value: entity.RequestStateDone}}
		if !request.JobCredited {
			credited = true
			request.JobCredited = true
			updates = append(updates, firestore.Update{Path: "jobCredited", Value: true})
		}
		return updates, nil
	})
	if err != nil {
		return nil, false, err
	}
	return request, credited, nil
}

func (r *firestoreRequestRepository) Reopen(ctx context.Context, id string) (*entity.Request, error) {
	return r.transition(ctx, id, func(request *entity.Request) ([]firestore.Update, error) {
		if request.Paid {
			return nil, errors.InvalidState("A paid request cannot be reopened")
		}
		if request.State == entity.RequestStateInProgress {
			return nil, nil
		}
		request.State = entity.RequestStateInProgress
		return []firestore.Update{{Path: "state", Value: entity.RequestStateInProgress}}, nil
	})
}

func (r *firestoreRequestRepository) AttachReview(ctx context.Context, id, providerID, reviewID string) error {
	_, err := r.transition(ctx, id, func(request *entity.Request) ([]firestore.Update, error) {
		if request.ProviderID == "" {
			return nil, errors.InvalidState("Request has no assigned provider")
		}
		if request.ProviderID != providerID {
			return nil, errors.InvalidState("Review provider does not match the assigned provider")
		}
		if request.ReviewID != "" {
			return nil, errors.Conflict("A review already exists for this request")
		}
		request.ReviewID = reviewID
		return []firestore.Update{{Path: "reviewId", Value: reviewID}}, nil
	})
	return err
}

func (r *firestoreRequestRepository) DetachReview(ctx context.Context, id, reviewID string) error {
	_, err := r.transition(ctx, id, func(request *entity.Request) ([]firestore.Update, error) {
		if request.ReviewID != reviewID {
			return nil, nil
		}
		request.ReviewID = ""
		return []firestore.Update{{Path: "reviewId", Value: ""}}, nil
	})
	if errors.Is(err, errors.CodeNotFound) {
		return nil
	}
	return err
}

// transition runs mutate against the current request inside a transaction.
// A nil update list leaves the document untouched.
func (r *firestoreRequestRepository) transition(ctx context.Context, id string, mutate func(*entity.Request) ([]firestore.Update, error)) (*entity.Request, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var result *entity.Request
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(r.ref(id))
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

		updates, err := mutate(request)
		if err != nil {
			return err
		}
		result = request
		if len(updates) == 0 {
			return nil
		}

		request.UpdatedAt = time.Now()
		updates = append(updates, firestore.Update{Path: "updatedAt", Value: request.UpdatedAt})
		return tx.Update(r.ref(id), updates)
	})
	if err != nil {
		return nil, storageError("Failed to update request", err)
	}
	return result, nil
}

func (r *firestoreRequestRepository) Patch(ctx context.Context, id string, patch entity.RequestPatch) (*entity.Request, error) {
	return r.transition(ctx, id, func(request *entity.Request) ([]firestore.Update, error) {
		var updates []firestore.Update
		if patch.Image != nil {
			request.Image = *patch.Image
			updates = append(updates, firestore.Update{Path: "image", Value: request.Image})
		}
		return updates, nil
	})
}

func (r *firestoreRequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.ref(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return errors.NotFound("Request", err)
		}
		return storageError("Failed to delete request", err)
	}
	return nil
}
