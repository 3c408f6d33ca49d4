package middleware

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"gorm.io/gorm"
)

// Authentication schemes, as recorded on Identity.Scheme.
const (
	SchemeBearer   = "bearer"
	SchemeSession  = "session"
	SchemeFirebase = "firebase"
)

// ErrNoCredentials is returned by a Resolver when the credentials are not its kind.
var ErrNoCredentials = errors.New("no credentials for this scheme")

// Identity is the authenticated user behind a request or socket.
type Identity struct {
	UserID string
	Email  string
	Scheme string
}

// Credentials are the raw secrets a caller presented.
type Credentials struct {
	Bearer string
	Cookie string
}

func (c Credentials) empty() bool {
	return c.Bearer == "" && c.Cookie == ""
}

// Resolver turns credentials into an Identity.
type Resolver interface {
	Resolve(ctx context.Context, creds Credentials) (Identity, error)
}

// Chain tries each resolver in order. The first one that recognises the
// credentials decides the outcome.
type Chain []Resolver

func (ch Chain) Resolve(ctx context.Context, creds Credentials) (Identity, error) {
	if creds.empty() {
		return Identity{}, ErrNoCredentials
	}
	for _, r := range ch {
		id, err := r.Resolve(ctx, creds)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return id, err
	}
	return Identity{}, models.NewUnauthorizedError("unsupported credentials")
}

// JWTResolver accepts HS256 bearer tokens. Tokens signed with other
// algorithms are left for the next resolver.
type JWTResolver struct {
	Tokens *TokenManager
}

func (r JWTResolver) Resolve(_ context.Context, creds Credentials) (Identity, error) {
	if creds.Bearer == "" || !isHMAC(creds.Bearer) {
		return Identity{}, ErrNoCredentials
	}
	claims, err := r.Tokens.Parse(creds.Bearer)
	if err != nil {
		return Identity{}, models.NewUnauthorizedError("invalid or expired token")
	}
	return Identity{UserID: claims.UserID, Email: claims.Email, Scheme: SchemeBearer}, nil
}

// SessionResolver accepts the session cookie set at sign-in.
type SessionResolver struct {
	Tokens *TokenManager
}

func (r SessionResolver) Resolve(_ context.Context, creds Credentials) (Identity, error) {
	if creds.Cookie == "" {
		return Identity{}, ErrNoCredentials
	}
	claims, err := r.Tokens.Parse(creds.Cookie)
	if err != nil {
		return Identity{}, models.NewUnauthorizedError("invalid or expired session")
	}
	return Identity{UserID: claims.UserID, Email: claims.Email, Scheme: SchemeSession}, nil
}

// FirebaseVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseResolver accepts Firebase ID tokens for users already linked
// through firebase-login.
type FirebaseResolver struct {
	Verifier FirebaseVerifier
	Users    repositories.UserRepository
}

func (r FirebaseResolver) Resolve(ctx context.Context, creds Credentials) (Identity, error) {
	if creds.Bearer == "" || r.Verifier == nil {
		return Identity{}, ErrNoCredentials
	}
	token, err := r.Verifier.VerifyIDToken(ctx, creds.Bearer)
	if err != nil {
		return Identity{}, models.NewUnauthorizedError("invalid or expired ID token")
	}
	user, err := r.Users.GetByFirebaseUID(ctx, token.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, models.NewUnauthorizedError("firebase account is not registered")
		}
		return Identity{}, models.NewStorageError(err)
	}
	return Identity{UserID: user.ID, Email: user.Email, Scheme: SchemeFirebase}, nil
}

// FirebaseEmail returns the verified email claim of token, if any.
func FirebaseEmail(token *auth.Token) string {
	if token == nil {
		return ""
	}
	email, _ := token.Claims["email"].(string)
	return email
}
