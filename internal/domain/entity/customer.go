package entity

import "time"

type Customer struct {
	ID               string    `json:"id" firestore:"id"`
	Name             string    `json:"name" firestore:"name"`
	Email            string    `json:"email" firestore:"email"`
	Phone            string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Address          string    `json:"address,omitempty" firestore:"address,omitempty"`
	Image            string    `json:"image,omitempty" firestore:"image,omitempty"`
	StripeCustomerID string    `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt"`
}
