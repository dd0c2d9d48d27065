package jwks

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"servibid/internal/domain/service"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
)

// Verifier validates bearer tokens issued by an external identity provider.
// The subject becomes the user id and the "role" claim, when present, the role.
type Verifier struct {
	keyfunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
}

func NewVerifier(keyFunc jwt.Keyfunc) *Verifier {
	return &Verifier{keyfunc: keyFunc}
}

// NewRemoteVerifier fetches the key set from url and refreshes it in the
// background until ctx is done.
func NewRemoteVerifier(ctx context.Context, url string) (*Verifier, error) {
	set, err := keyfunc.Get(url, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error("JWKS refresh failed: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	return &Verifier{keyfunc: set.Keyfunc, jwks: set}, nil
}

func (v *Verifier) VerifyToken(ctx context.Context, tokenString string) (*service.Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc)
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, errors.Unauthorized("Token has no subject", nil)
	}

	identity := &service.Identity{UserID: subject}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	return identity, nil
}

// Close stops the background refresh of a remote key set.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
