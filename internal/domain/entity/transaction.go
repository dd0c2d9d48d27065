package entity

import "time"

const TransactionStatusCompleted = "completed"

type Transaction struct {
	ID              string    `json:"id" firestore:"id"`
	CustomerID      string    `json:"customerId" firestore:"customerId"`
	ProviderID      string    `json:"providerId" firestore:"providerId"`
	RequestID       string    `json:"requestId" firestore:"requestId"`
	PaymentIntentID string    `json:"paymentIntentId" firestore:"paymentIntentId"`
	Amount          float64   `json:"amount" firestore:"amount"`
	Currency        string    `json:"currency" firestore:"currency"`
	CardLast4       string    `json:"cardLast4" firestore:"cardLast4"`
	CardBrand       string    `json:"cardBrand" firestore:"cardBrand"`
	Status          string    `json:"status" firestore:"status"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
}

// PaymentOutcome reports what RecordPayment changed.
type PaymentOutcome struct {
	Transaction *Transaction
	Request     *Request
	// Created is false when a transaction already existed for the request.
	Created bool
	// CompletedNow is true when this recording is the first completion of the
	// request, so the provider is owed a job credit.
	CompletedNow bool
}
