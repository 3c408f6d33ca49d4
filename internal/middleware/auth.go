package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Authenticator resolves the caller of every request through one Resolver.
type Authenticator struct {
	resolver   Resolver
	cookieName string
}

func NewAuthenticator(resolver Resolver, cookieName string) *Authenticator {
	return &Authenticator{resolver: resolver, cookieName: cookieName}
}

// Require rejects requests without a valid identity.
func (a *Authenticator) Require() echo.MiddlewareFunc {
	return a.middleware(true)
}

// Optional resolves the identity when credentials are present and lets
// anonymous requests through.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return a.middleware(false)
}

func (a *Authenticator) middleware(required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			creds, err := a.credentials(c.Request())
			if err != nil {
				return err
			}

			id, err := a.resolver.Resolve(c.Request().Context(), creds)
			switch {
			case errors.Is(err, ErrNoCredentials):
				if required {
					return models.NewUnauthorizedError("missing credentials")
				}
				return next(c)
			case err != nil:
				return err
			}

			c.Set(identityKey, id)
			c.Set(logger.FieldUserID, id.UserID)
			c.Set(logger.FieldAuthScheme, id.Scheme)
			return next(c)
		}
	}
}

// ResolveToken authenticates a raw token, as sent in a websocket auth frame.
func (a *Authenticator) ResolveToken(ctx context.Context, token string) (Identity, error) {
	id, err := a.resolver.Resolve(ctx, Credentials{Bearer: strings.TrimSpace(token)})
	if errors.Is(err, ErrNoCredentials) {
		return Identity{}, models.NewUnauthorizedError("missing credentials")
	}
	return id, err
}

// CookieName is the session cookie this authenticator reads.
func (a *Authenticator) CookieName() string {
	return a.cookieName
}

func (a *Authenticator) credentials(r *http.Request) (Credentials, error) {
	var creds Credentials
	if header := r.Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return creds, models.NewUnauthorizedError("Authorization header must be in Bearer format")
		}
		creds.Bearer = parts[1]
	}
	if a.cookieName != "" {
		if cookie, err := r.Cookie(a.cookieName); err == nil {
			creds.Cookie = cookie.Value
		}
	}
	return creds, nil
}

// IdentityFrom returns the identity stored by the authenticator.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(c echo.Context) string {
	id, _ := IdentityFrom(c)
	return id.UserID
}
