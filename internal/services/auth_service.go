package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer signs session tokens for a user.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

// Session is a signed-in user and their token.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// AuthService registers users and signs them in.
type AuthService struct {
	users  repositories.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users repositories.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Signup creates a local account with a bcrypt password hash.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewStorageError(fmt.Errorf("hash password: %w", err))
	}
	hashed := string(hash)

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: &hashed,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewDuplicateError("username or email already registered")
		}
		return nil, storageErr(err)
	}
	return s.session(user)
}

// Signin checks an email and password.
func (s *AuthService) Signin(ctx context.Context, req models.SigninRequest) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("invalid email or password")
		}
		return nil, storageErr(err)
	}
	if user.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return nil, models.NewUnauthorizedError("invalid email or password")
	}
	return s.session(user)
}

// FirebaseLogin signs in the user linked to a verified Firebase account,
// linking by email or creating an account on first login.
func (s *AuthService) FirebaseLogin(ctx context.Context, firebaseUID, email, username string) (*Session, error) {
	user, err := s.users.GetByFirebaseUID(ctx, firebaseUID)
	if err == nil {
		return s.session(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr(err)
	}

	if email != "" {
		user, err = s.users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			if err := s.users.Update(ctx, user.ID, map[string]interface{}{"firebase_uid": firebaseUID}); err != nil {
				return nil, storageErr(err)
			}
			user.FirebaseUID = &firebaseUID
			return s.session(user)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, storageErr(err)
		}
	}

	if username == "" {
		username = usernameFrom(email, firebaseUID)
	}
	if email == "" {
		email = firebaseUID + "@firebase.local"
	}
	user = &models.User{
		Username:    username,
		Email:       strings.ToLower(email),
		FirebaseUID: &firebaseUID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewDuplicateError("username already taken")
		}
		return nil, storageErr(err)
	}
	return s.session(user)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func usernameFrom(email, uid string) string {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	base = nonAlnum.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}
	suffix := strings.ToLower(nonAlnum.ReplaceAllString(strings.ToLower(uid), ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	if len(base) > 40 {
		base = base[:40]
	}
	return base + suffix
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewStorageError(fmt.Errorf("issue token: %w", err))
	}
	return &Session{Token: token, ExpiresAt: exp, User: *user}, nil
}
