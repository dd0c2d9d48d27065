package entity

import "time"

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

type Provider struct {
	ID              string    `json:"id" firestore:"id"`
	Name            string    `json:"name" firestore:"name"`
	Email           string    `json:"email" firestore:"email"`
	Phone           string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Description     string    `json:"description,omitempty" firestore:"description,omitempty"`
	Image           string    `json:"image,omitempty" firestore:"image,omitempty"`
	Rating          float64   `json:"rating" firestore:"rating"`
	JobsDone        int       `json:"jobsDone" firestore:"jobsDone"`
	Revenue         float64   `json:"revenue" firestore:"revenue"`
	Rank            string    `json:"rank,omitempty" firestore:"rank,omitempty"`
	Badges          []string  `json:"badges" firestore:"badges"`
	ServicesOffered []string  `json:"servicesOffered" firestore:"servicesOffered"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// ProviderSummary is the provider view embedded in bid listings.
type ProviderSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Phone       string  `json:"phone,omitempty"`
}

func (p *Provider) Summary() ProviderSummary {
	return ProviderSummary{
		ID:          p.ID,
		Name:        p.Name,
		Rating:      p.Rating,
		Description: p.Description,
		Image:       p.Image,
		Phone:       p.Phone,
	}
}

// Participant identifies either side of a chat.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Image string `json:"image,omitempty"`
}
