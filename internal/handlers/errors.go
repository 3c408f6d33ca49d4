package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// HTTPErrorHandler writes every error as {"success":false,"error":{...}}.
// Wrapped causes are only exposed outside production.
func HTTPErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toErrorBody(err)
		if production {
			body.Details = ""
		}
		if status >= http.StatusInternalServerError {
			logger.Ctx(c.Request().Context()).Error().Err(err).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, errorResponse{Error: body})
		}
		if err != nil {
			logger.Ctx(c.Request().Context()).Error().Err(err).Msg("write error response")
		}
	}
}

func toErrorBody(err error) (int, errorBody) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		body := errorBody{Code: appErr.Code, Message: appErr.Message}
		if appErr.Err != nil {
			body.Details = appErr.Err.Error()
		}
		return appErr.Status(), body
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, errorBody{Code: codeForStatus(httpErr.Code), Message: msg}
	}

	return http.StatusInternalServerError, errorBody{
		Code:    models.CodeStorage,
		Message: "Internal server error",
		Details: err.Error(),
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return models.CodeValidation
	case http.StatusUnauthorized:
		return models.CodeUnauthorized
	case http.StatusForbidden:
		return models.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return models.CodeNotFound
	case http.StatusConflict:
		return models.CodeDuplicate
	default:
		return models.CodeStorage
	}
}
