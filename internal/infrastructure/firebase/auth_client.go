package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"servibid/internal/domain/service"
	"servibid/pkg/errors"
)

// roleClaim is the custom claim that carries the account role.
const roleClaim = "role"

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*service.Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	identity := &service.Identity{UserID: result.UID}
	if role, ok := result.Claims[roleClaim].(string); ok {
		identity.Role = role
	}
	return identity, nil
}
