package handlers

import (
	"strconv"

	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, successResponse{Success: true, Data: data})
}

// currentUser returns the caller's user ID. Routes using it sit behind
// Authenticator.Require, so an empty ID means the middleware is missing.
func currentUser(c echo.Context) (string, error) {
	id := middleware.UserID(c)
	if id == "" {
		return "", models.NewUnauthorizedError("authentication required")
	}
	return id, nil
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, models.NewValidationError("invalid " + name)
	}
	return uint(v), nil
}

// pageParams reads ?offset=&limit= and clamps them to the service bounds.
func pageParams(c echo.Context) (int, int, error) {
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := intQuery(c, "limit", services.DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	offset, limit = services.NormalizePage(offset, limit)
	return offset, limit, nil
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name + " must be an integer")
	}
	return v, nil
}
