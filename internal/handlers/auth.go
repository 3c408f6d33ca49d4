package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SessionCookie configures the cookie set at sign-in.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth     *services.AuthService
	firebase middleware.FirebaseVerifier
	cookie   SessionCookie
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil, which
// disables firebase-login.
func NewAuthHandler(auth *services.AuthService, firebase middleware.FirebaseVerifier, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{auth: auth, firebase: firebase, cookie: cookie}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/logout", h.Logout)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	h.setCookie(c, session)
	return respond(c, http.StatusCreated, session)
}

// SignIn handles local user login with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Signin(c.Request().Context(), req)
	if err != nil {
		return err
	}
	h.setCookie(c, session)
	return respond(c, http.StatusOK, session)
}

// FirebaseLogin exchanges a verified Firebase ID token for a local session,
// creating or linking the account on first use.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebase == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "firebase login is not configured")
	}
	var req models.FirebaseLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return models.NewUnauthorizedError("invalid or expired ID token")
	}
	session, err := h.auth.FirebaseLogin(ctx, token.UID, middleware.FirebaseEmail(token), req.Username)
	if err != nil {
		return err
	}
	h.setCookie(c, session)
	return respond(c, http.StatusOK, session)
}

// Logout clears the session cookie. Bearer tokens expire on their own.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) setCookie(c echo.Context, session *services.Session) {
	if h.cookie.Name == "" {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
