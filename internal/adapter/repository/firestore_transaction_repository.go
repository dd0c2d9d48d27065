package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

type firestoreTransactionRepository struct {
	firestoreBase
}

func NewFirestoreTransactionRepository(client *firestore.Client, timeout time.Duration) repository.TransactionRepository {
	return &firestoreTransactionRepository{firestoreBase: newBase(client, timeout)}
}

// Transactions are keyed by request so a request can never hold two of them.
func transactionID(requestID string) string {
	return "txn_" + requestID
}

func (r *firestoreTransactionRepository) RecordPayment(ctx context.Context, txn *entity.Transaction) (*entity.PaymentOutcome, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	txn.ID = transactionID(txn.RequestID)
	txn.Status = entity.TransactionStatusCompleted
	txn.CreatedAt = time.Now()

	requestRef := r.client.Collection(requestsCollection).Doc(txn.RequestID)
	txnRef := r.client.Collection(transactionsCollection).Doc(txn.ID)

	var outcome *entity.PaymentOutcome
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		requestDoc, err := tx.Get(requestRef)
		if err != nil {
			if isNotFound(err) {
				return errors.NotFound("Request", err)
			}
			return err
		}
		request, err := requestFromDoc(requestDoc)
		if err != nil {
			return err
		}

		existingDoc, err := tx.Get(txnRef)
		if err == nil {
			var existing entity.Transaction
			if err := existingDoc.DataTo(&existing); err != nil {
				return err
			}
			outcome = &entity.PaymentOutcome{Transaction: &existing, Request: request}
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		if request.ProviderID == "" {
			return errors.InvalidState("Request has no assigned provider")
		}
		if request.ProviderID != txn.ProviderID || request.CustomerID != txn.CustomerID {
			return errors.InvalidState("Payment parties do not match the request")
		}

		completedNow := !request.JobCredited
		request.Paid = true
		request.State = entity.RequestStateDone
		request.JobCredited = true
		request.UpdatedAt = time.Now()

		if err := tx.Create(txnRef, txn); err != nil {
			return err
		}
		outcome = &entity.PaymentOutcome{
			Transaction:  txn,
			Request:      request,
			Created:      true,
			CompletedNow: completedNow,
		}
		return tx.Update(requestRef, []firestore.Update{
			{Path: "paid", Value: true},
			{Path: "state", Value: entity.RequestStateDone},
			{Path: "jobCredited", Value: true},
			{Path: "updatedAt", Value: request.UpdatedAt},
		})
	})
	if err != nil {
		return nil, storageError("Failed to record payment", err)
	}
	return outcome, nil
}

func (r *firestoreTransactionRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.client.Collection(transactionsCollection).Doc(transactionID(requestID)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Transaction", err)
		}
		return nil, storageError("Failed to get transaction", err)
	}

	var txn entity.Transaction
	if err := doc.DataTo(&txn); err != nil {
		return nil, errors.Internal("Failed to parse transaction data", err)
	}
	return &txn, nil
}

func (r *firestoreTransactionRepository) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	txns, err := collect[entity.Transaction](r.client.Collection(transactionsCollection).
		Where("customerId", "==", customerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx))
	if err != nil {
		return nil, storageError("Failed to list transactions", err)
	}
	return txns, nil
}
