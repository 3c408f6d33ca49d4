package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubVerifier map[string]string

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := s[idToken]
	if !ok {
		return nil, errors.New("invalid id token")
	}
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com"}}, nil
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	user := &models.User{ID: "u1", Email: "u1@example.com"}

	token, exp, err := tm.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1", claims.Subject)

	_, err = NewTokenManager("other-secret", time.Hour).Parse(token)
	assert.Error(t, err)

	expired := NewTokenManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(user)
	require.NoError(t, err)
	_, err = tm.Parse(old)
	assert.Error(t, err)
}

func newChain(t *testing.T) (Chain, *TokenManager, *models.User) {
	t.Helper()
	db := testutil.NewTestDB(t)
	linked := testutil.CreateUser(t, db, "linked")
	uid := "fb-linked"
	require.NoError(t, db.Model(linked).Update("firebase_uid", uid).Error)

	tm := NewTokenManager(testSecret, time.Hour)
	chain := Chain{
		JWTResolver{Tokens: tm},
		FirebaseResolver{
			Verifier: stubVerifier{"fb-good": uid, "fb-stranger": "fb-unknown"},
			Users:    repositories.NewPostgresUserRepository(db),
		},
		SessionResolver{Tokens: tm},
	}
	return chain, tm, linked
}

func TestChain_Resolve(t *testing.T) {
	chain, tm, linked := newChain(t)
	ctx := context.Background()
	token, _, err := tm.Issue(&models.User{ID: "u1", Email: "u1@example.com"})
	require.NoError(t, err)

	t.Run("bearer jwt", func(t *testing.T) {
		id, err := chain.Resolve(ctx, Credentials{Bearer: token})
		require.NoError(t, err)
		assert.Equal(t, Identity{UserID: "u1", Email: "u1@example.com", Scheme: SchemeBearer}, id)
	})

	t.Run("session cookie", func(t *testing.T) {
		id, err := chain.Resolve(ctx, Credentials{Cookie: token})
		require.NoError(t, err)
		assert.Equal(t, SchemeSession, id.Scheme)
	})

	t.Run("firebase id token for a linked account", func(t *testing.T) {
		id, err := chain.Resolve(ctx, Credentials{Bearer: "fb-good"})
		require.NoError(t, err)
		assert.Equal(t, linked.ID, id.UserID)
		assert.Equal(t, SchemeFirebase, id.Scheme)
	})

	t.Run("firebase account not linked", func(t *testing.T) {
		_, err := chain.Resolve(ctx, Credentials{Bearer: "fb-stranger"})
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})

	t.Run("tampered jwt is rejected without falling through", func(t *testing.T) {
		_, err := chain.Resolve(ctx, Credentials{Bearer: token + "x"})
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})

	t.Run("nothing presented", func(t *testing.T) {
		_, err := chain.Resolve(ctx, Credentials{})
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestChain_FirebaseDisabled(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	chain := Chain{JWTResolver{Tokens: tm}, FirebaseResolver{}}

	_, err := chain.Resolve(context.Background(), Credentials{Bearer: "opaque"})
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestFirebaseEmail(t *testing.T) {
	assert.Equal(t, "a@b.c", FirebaseEmail(&auth.Token{Claims: map[string]interface{}{"email": "a@b.c"}}))
	assert.Empty(t, FirebaseEmail(&auth.Token{}))
	assert.Empty(t, FirebaseEmail(nil))
}

func serve(a *Authenticator, mw func(*Authenticator) echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, string, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := mw(a)(func(c echo.Context) error {
		seen = UserID(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, seen, err
}

func TestAuthenticator(t *testing.T) {
	chain, tm, _ := newChain(t)
	a := NewAuthenticator(chain, "session")
	required := func(a *Authenticator) echo.MiddlewareFunc { return a.Require() }
	optional := func(a *Authenticator) echo.MiddlewareFunc { return a.Optional() }

	token, _, err := tm.Issue(&models.User{ID: "u1"})
	require.NoError(t, err)

	t.Run("require with bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec, seen, err := serve(a, required, req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", seen)
	})

	t.Run("require with cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
		_, seen, err := serve(a, required, req)
		assert.NoError(t, err)
		assert.Equal(t, "u1", seen)
	})

	t.Run("require without credentials", func(t *testing.T) {
		_, _, err := serve(a, required, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Token abc")
		_, _, err := serve(a, optional, req)
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})

	t.Run("optional lets anonymous through", func(t *testing.T) {
		_, seen, err := serve(a, optional, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NoError(t, err)
		assert.Empty(t, seen)
	})

	t.Run("resolve websocket token", func(t *testing.T) {
		id, err := a.ResolveToken(context.Background(), " "+token+" ")
		assert.NoError(t, err)
		assert.Equal(t, "u1", id.UserID)

		_, err = a.ResolveToken(context.Background(), "")
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})
}
