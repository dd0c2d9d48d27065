package memstore

import (
	"context"
	"sort"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

// ---- requests

type requestRepo struct{ s *Store }

func (r requestRepo) Create(ctx context.Context, request *entity.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request.ID = newID(request.ID)
	if _, exists := r.s.requests[request.ID]; exists {
		return errors.Conflict("Request already exists")
	}
	request.CreatedAt = r.s.now()
	request.UpdatedAt = request.CreatedAt
	r.s.requests[request.ID] = copyRequest(request)
	return nil
}

func (r requestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.requests[id]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}
	return copyRequest(request), nil
}

func (r requestRepo) list(match func(*entity.Request) bool) []*entity.Request {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	requests := make([]*entity.Request, 0)
	for _, request := range r.s.requests {
		if match(request) {
			requests = append(requests, copyRequest(request))
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests
}

func (r requestRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Request, error) {
	return r.list(func(req *entity.Request) bool { return req.CustomerID == customerID }), nil
}

func (r requestRepo) ListByProvider(ctx context.Context, providerID string) ([]*entity.Request, error) {
	return r.list(func(req *entity.Request) bool { return req.ProviderID == providerID }), nil
}

func (r requestRepo) ListAvailable(ctx context.Context, services []string) ([]*entity.Request, error) {
	wanted := make(map[string]bool, len(services))
	for _, service := range services {
		wanted[service] = true
	}
	return r.list(func(req *entity.Request) bool {
		return wanted[req.Service] && req.State == entity.RequestStateInProgress && req.ProviderID == ""
	}), nil
}

func (r requestRepo) AssignProvider(ctx context.Context, id, providerID string, price *float64) (*repository.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.requests[id]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}
	if request.ProviderID == providerID && (price == nil || (request.Price != nil && *request.Price == *price)) {
		return &repository.Assignment{Request: copyRequest(request), PreviousProvider: request.ProviderID}, nil
	}
	if request.Paid {
		return nil, errors.InvalidState("Request is already paid and cannot be reassigned")
	}
	if request.JobCredited && request.ProviderID != providerID {
		return nil, errors.InvalidState("Request was completed and cannot be reassigned")
	}

	previous := request.ProviderID
	request.ProviderID = providerID
	if price != nil {
		p := *price
		request.Price = &p
	}
	request.Paid = false
	request.UpdatedAt = r.s.now()
	return &repository.Assignment{Request: copyRequest(request), Changed: true, PreviousProvider: previous}, nil
}

func (r requestRepo) transition(id string, mutate func(*entity.Request) (bool, error)) (*entity.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.requests[id]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}
	working := copyRequest(request)
	changed, err := mutate(working)
	if err != nil {
		return nil, err
	}
	if changed {
		working.UpdatedAt = r.s.now()
		r.s.requests[id] = working
	}
	return copyRequest(working), nil
}

func (r requestRepo) MarkDone(ctx context.Context, id, providerID string) (*entity.Request, bool, error) {
	credited := false
	request, err := r.transition(id, func(req *entity.Request) (bool, error) {
		if req.ProviderID != providerID || req.State != entity.RequestStateInProgress {
			return false, errors.NoOp("No in-progress request found for this provider")
		}
		req.State = entity.RequestStateDone
		credited = !req.JobCredited
		req.JobCredited = true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return request, credited, nil
}

func (r requestRepo) Reopen(ctx context.Context, id string) (*entity.Request, error) {
	return r.transition(id, func(req *entity.Request) (bool, error) {
		if req.Paid {
			return false, errors.InvalidState("A paid request cannot be reopened")
		}
		if req.State == entity.RequestStateInProgress {
			return false, nil
		}
		req.State = entity.RequestStateInProgress
		return true, nil
	})
}

func (r requestRepo) AttachReview(ctx context.Context, id, providerID, reviewID string) error {
	_, err := r.transition(id, func(req *entity.Request) (bool, error) {
		if req.ProviderID == "" {
			return false, errors.InvalidState("Request has no assigned provider")
		}
		if req.ProviderID != providerID {
			return false, errors.InvalidState("Review provider does not match the assigned provider")
		}
		if req.ReviewID != "" {
			return false, errors.Conflict("A review already exists for this request")
		}
		req.ReviewID = reviewID
		return true, nil
	})
	return err
}

func (r requestRepo) DetachReview(ctx context.Context, id, reviewID string) error {
	_, err := r.transition(id, func(req *entity.Request) (bool, error) {
		if req.ReviewID != reviewID {
			return false, nil
		}
		req.ReviewID = ""
		return true, nil
	})
	if errors.Is(err, errors.CodeNotFound) {
		return nil
	}
	return err
}

func (r requestRepo) Patch(ctx context.Context, id string, patch entity.RequestPatch) (*entity.Request, error) {
	return r.transition(id, func(req *entity.Request) (bool, error) {
		if patch.Image == nil {
			return false, nil
		}
		req.Image = *patch.Image
		return true, nil
	})
}

func (r requestRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.requests[id]; !ok {
		return errors.NotFound("Request", nil)
	}
	delete(r.s.requests, id)
	return nil
}

// ---- bids

type bidRepo struct{ s *Store }

func (r bidRepo) CreateForOpenRequest(ctx context.Context, bid *entity.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.requests[bid.RequestID]
	if !ok {
		return errors.NotFound("Request", nil)
	}
	if request.IsAssigned() || request.State != entity.RequestStateInProgress {
		return errors.InvalidState("Request is no longer accepting bids")
	}

	bid.ID = newID(bid.ID)
	if bid.Status == "" {
		bid.Status = entity.BidStatusPending
	}
	bid.CreatedAt = r.s.now()
	c := *bid
	r.s.bids[bid.ID] = &c
	return nil
}

func (r bidRepo) byRequest(requestID string) []*entity.Bid {
	bids := make([]*entity.Bid, 0)
	for _, bid := range r.s.bids {
		if bid.RequestID == requestID {
			bids = append(bids, bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].CreatedAt.After(bids[j].CreatedAt) })
	return bids
}

func (r bidRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	bids := r.byRequest(requestID)
	out := make([]*entity.Bid, len(bids))
	for i, bid := range bids {
		c := *bid
		out[i] = &c
	}
	return out, nil
}

func (r bidRepo) FindByRequestAndProvider(ctx context.Context, requestID, providerID string) (*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, bid := range r.byRequest(requestID) {
		if bid.ProviderID == providerID {
			c := *bid
			return &c, nil
		}
	}
	return nil, errors.NotFound("Bid", nil)
}

func (r bidRepo) MarkSeen(ctx context.Context, requestID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	updated := 0
	for _, bid := range r.byRequest(requestID) {
		if !bid.Seen {
			bid.Seen = true
			updated++
		}
	}
	return updated, nil
}

func (r bidRepo) Resolve(ctx context.Context, requestID, acceptedProviderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, bid := range r.byRequest(requestID) {
		if bid.ProviderID == acceptedProviderID {
			bid.Status = entity.BidStatusAccepted
		} else {
			bid.Status = entity.BidStatusRejected
		}
	}
	return nil
}

func (r bidRepo) DeleteByRequest(ctx context.Context, requestID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := 0
	for _, bid := range r.byRequest(requestID) {
		delete(r.s.bids, bid.ID)
		deleted++
	}
	return deleted, nil
}

// ---- reviews

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(ctx context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	review.ID = newID(review.ID)
	if _, exists := r.s.reviews[review.ID]; exists {
		return errors.Conflict("Review already exists")
	}
	review.CreatedAt = r.s.now()
	c := *review
	r.s.reviews[review.ID] = &c
	return nil
}

func (r reviewRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, review := range r.s.reviews {
		if review.RequestID == requestID {
			c := *review
			return &c, nil
		}
	}
	return nil, errors.NotFound("Review", nil)
}

func (r reviewRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.reviews, id)
	return nil
}

func (r reviewRepo) byProvider(providerID string) []*entity.Review {
	reviews := make([]*entity.Review, 0)
	for _, review := range r.s.reviews {
		if review.ProviderID == providerID {
			c := *review
			reviews = append(reviews, &c)
		}
	}
	return reviews
}

func (r reviewRepo) ListByProvider(ctx context.Context, providerID, sortBy string, limit, offset int) ([]*entity.Review, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reviews := r.byProvider(providerID)
	sort.Slice(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		switch sortBy {
		case entity.ReviewSortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case entity.ReviewSortHighest:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case entity.ReviewSortLowest:
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	total := int64(len(reviews))
	if offset >= len(reviews) {
		return []*entity.Review{}, total, nil
	}
	end := offset + limit
	if end > len(reviews) {
		end = len(reviews)
	}
	return reviews[offset:end], total, nil
}

func (r reviewRepo) AverageRating(ctx context.Context, providerID string) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reviews := r.byProvider(providerID)
	if len(reviews) == 0 {
		return 0, nil
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews)), nil
}

func (r reviewRepo) ExistingRequestIDs(ctx context.Context, requestIDs []string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reviewed := make(map[string]bool)
	for _, review := range r.s.reviews {
		reviewed[review.RequestID] = true
	}
	existing := make([]string, 0)
	for _, id := range requestIDs {
		if reviewed[id] {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

// ---- transactions

type transactionRepo struct{ s *Store }

func (r transactionRepo) RecordPayment(ctx context.Context, txn *entity.Transaction) (*entity.PaymentOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.requests[txn.RequestID]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}

	txnID := "txn_" + txn.RequestID
	if existing, ok := r.s.transactions[txnID]; ok {
		c := *existing
		return &entity.PaymentOutcome{Transaction: &c, Request: copyRequest(request)}, nil
	}

	if request.ProviderID == "" {
		return nil, errors.InvalidState("Request has no assigned provider")
	}
	if request.ProviderID != txn.ProviderID || request.CustomerID != txn.CustomerID {
		return nil, errors.InvalidState("Payment parties do not match the request")
	}

	txn.ID = txnID
	txn.Status = entity.TransactionStatusCompleted
	txn.CreatedAt = r.s.now()
	stored := *txn
	r.s.transactions[txnID] = &stored

	completedNow := !request.JobCredited
	request.Paid = true
	request.State = entity.RequestStateDone
	request.JobCredited = true
	request.UpdatedAt = r.s.now()

	return &entity.PaymentOutcome{
		Transaction:  txn,
		Request:      copyRequest(request),
		Created:      true,
		CompletedNow: completedNow,
	}, nil
}

func (r transactionRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	txn, ok := r.s.transactions["txn_"+requestID]
	if !ok {
		return nil, errors.NotFound("Transaction", nil)
	}
	c := *txn
	return &c, nil
}

func (r transactionRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	txns := make([]*entity.Transaction, 0)
	for _, txn := range r.s.transactions {
		if txn.CustomerID == customerID {
			c := *txn
			txns = append(txns, &c)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.After(txns[j].CreatedAt) })
	return txns, nil
}
