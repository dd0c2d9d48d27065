package entity

// Service is a catalog entry a customer can request.
type Service struct {
	ID          string `json:"id" firestore:"id" yaml:"id"`
	Name        string `json:"name" firestore:"name" yaml:"name"`
	Category    string `json:"category" firestore:"category" yaml:"category"`
	Description string `json:"description,omitempty" firestore:"description,omitempty" yaml:"description"`
	Icon        string `json:"icon,omitempty" firestore:"icon,omitempty" yaml:"icon"`
}
