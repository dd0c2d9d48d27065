package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"servibid/internal/domain/service"
	"servibid/pkg/config"
	"servibid/pkg/errors"
	"servibid/pkg/response"
)

const (
	contextUserID = "uid"
	contextRole   = "role"

	// HeaderUserID carries the caller identity in header mode.
	HeaderUserID = "user-id"
	HeaderRole   = "user-type"
)

// AuthMiddleware resolves the caller identity. In header mode the client
// declares it; in firebase and jwks modes it comes from a verified token.
type AuthMiddleware struct {
	mode     string
	verifier service.TokenVerifier
}

func NewAuthMiddleware(mode string, verifier service.TokenVerifier) *AuthMiddleware {
	if verifier == nil {
		mode = config.AuthModeHeader
	}
	return &AuthMiddleware{
		mode:     mode,
		verifier: verifier,
	}
}

// Identify sets the caller identity when one is presented. A request without
// one passes through; a token that fails verification is rejected.
func (m *AuthMiddleware) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		declaredRole := firstNonEmpty(c.Request().Header.Get(HeaderRole), c.QueryParam("userType"))

		if m.mode == config.AuthModeHeader {
			if userID := firstNonEmpty(c.Request().Header.Get(HeaderUserID), c.QueryParam("userId")); userID != "" {
				c.Set(contextUserID, userID)
				c.Set(contextRole, declaredRole)
			}
			return next(c)
		}

		token := bearerToken(c)
		if token == "" {
			return next(c)
		}

		identity, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set(contextUserID, identity.UserID)
		c.Set(contextRole, firstNonEmpty(identity.Role, declaredRole))
		return next(c)
	}
}

// Authenticate is Identify followed by a hard requirement on the identity.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return m.Identify(RequireUser(next))
}

func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserID(c) == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}
		return next(c)
	}
}

func UserID(c echo.Context) string {
	uid, _ := c.Get(contextUserID).(string)
	return uid
}

func Role(c echo.Context) string {
	role, _ := c.Get(contextRole).(string)
	return role
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	// Browsers cannot set headers on a websocket handshake.
	return c.QueryParam("token")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
