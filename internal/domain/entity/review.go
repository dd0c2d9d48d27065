package entity

import "time"

type Review struct {
	ID         string    `json:"id" firestore:"id"`
	RequestID  string    `json:"requestId" firestore:"requestId"`
	ProviderID string    `json:"providerId" firestore:"providerId"`
	CustomerID string    `json:"customerId" firestore:"customerId"`
	Rating     int       `json:"rating" firestore:"rating"`
	Title      string    `json:"title" firestore:"title"`
	Comment    string    `json:"comment" firestore:"comment"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

const (
	ReviewSortNewest  = "newest"
	ReviewSortOldest  = "oldest"
	ReviewSortHighest = "highest"
	ReviewSortLowest  = "lowest"
)
