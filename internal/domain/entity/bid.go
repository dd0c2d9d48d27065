package entity

import "time"

const (
	BidStatusPending  = "pending"
	BidStatusAccepted = "accepted"
	BidStatusRejected = "rejected"
)

type Bid struct {
	ID          string    `json:"id" firestore:"id"`
	RequestID   string    `json:"requestId" firestore:"requestId"`
	ProviderID  string    `json:"providerId" firestore:"providerId"`
	Price       float64   `json:"price" firestore:"price"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	Status      string    `json:"status" firestore:"status"`
	Seen        bool      `json:"seen" firestore:"seen"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// BidWithProvider is a bid listing row.
type BidWithProvider struct {
	*Bid
	ServiceProvider ProviderSummary `json:"serviceProvider"`
}
