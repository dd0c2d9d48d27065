package service

import "context"

// Identity is the authenticated caller as reported by the identity provider.
type Identity struct {
	UserID string
	// Role is empty when the provider does not carry one.
	Role string
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}
