package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, production bool, method string, err error) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/", nil), rec)

	HTTPErrorHandler(production)(err, c)

	var body errorResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHTTPErrorHandler(t *testing.T) {
	storage := models.NewStorageError(errors.New("connection refused"))

	t.Run("app error", func(t *testing.T) {
		rec, body := render(t, false, http.MethodGet, models.NewNotFoundError("post", 7))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.False(t, body.Success)
		assert.Equal(t, models.CodeNotFound, body.Error.Code)
	})

	t.Run("details outside production", func(t *testing.T) {
		rec, body := render(t, false, http.MethodGet, storage)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "connection refused", body.Error.Details)
	})

	t.Run("details stripped in production", func(t *testing.T) {
		_, body := render(t, true, http.MethodGet, storage)
		assert.Equal(t, models.CodeStorage, body.Error.Code)
		assert.Empty(t, body.Error.Details)
	})

	t.Run("echo http error", func(t *testing.T) {
		rec, body := render(t, false, http.MethodGet, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too big"))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, models.CodeValidation, body.Error.Code)
		assert.Equal(t, "too big", body.Error.Message)
	})

	t.Run("plain error", func(t *testing.T) {
		rec, body := render(t, true, http.MethodGet, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", body.Error.Message)
	})

	t.Run("head has no body", func(t *testing.T) {
		rec, _ := render(t, false, http.MethodHead, models.NewUnauthorizedError("nope"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})
}

func TestValidator_FieldMessages(t *testing.T) {
	err := NewValidator().Validate(&models.SignupRequest{Username: "ab", Email: "nope", Password: "short"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Contains(t, err.Error(), "username must be at least 3 characters")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "password must be at least 8 characters")
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "non-browser clients send no Origin")

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
