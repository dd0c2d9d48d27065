package entity

import "time"

const (
	RequestStateInProgress = "in-progress"
	RequestStateDone       = "done"
)

type Request struct {
	ID          string                 `json:"id" firestore:"id"`
	CustomerID  string                 `json:"customerId" firestore:"customerId"`
	ProviderID  string                 `json:"providerId,omitempty" firestore:"providerId"`
	Service     string                 `json:"service" firestore:"service"`
	Category    string                 `json:"category,omitempty" firestore:"category,omitempty"`
	Budget      float64                `json:"budget" firestore:"budget"`
	Date        time.Time              `json:"date" firestore:"date"`
	Description string                 `json:"description" firestore:"description"`
	Location    string                 `json:"location,omitempty" firestore:"location,omitempty"`
	Image       string                 `json:"image,omitempty" firestore:"image,omitempty"`
	State       string                 `json:"state" firestore:"state"`
	Paid        bool                   `json:"paid" firestore:"paid"`
	Price       *float64               `json:"price,omitempty" firestore:"price"`
	ReviewID    string                 `json:"reviewId,omitempty" firestore:"reviewId"`
	JobCredited bool                   `json:"-" firestore:"jobCredited"`
	Details     map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt" firestore:"updatedAt"`
}

func (r *Request) IsAssigned() bool {
	return r.ProviderID != ""
}

// RequestPatch carries the free-form fields of a request update. Assignment
// and review links have their own guarded operations.
type RequestPatch struct {
	Image *string
}
