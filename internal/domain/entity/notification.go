package entity

import "time"

const (
	NotificationNewJob         = "new_job"
	NotificationBidAccepted    = "bid_accepted"
	NotificationNewMessage     = "new_message"
	NotificationPayment        = "payment"
	NotificationReview         = "review"
	NotificationNewBid         = "new_bid"
	NotificationRequestCreated = "request_created"
)

type Notification struct {
	ID        string                 `json:"id" firestore:"id"`
	UserID    string                 `json:"user" firestore:"user"`
	Type      string                 `json:"type" firestore:"type"`
	Message   string                 `json:"message" firestore:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" firestore:"meta,omitempty"`
	Read      bool                   `json:"read" firestore:"read"`
	CreatedAt time.Time              `json:"createdAt" firestore:"createdAt"`
}
