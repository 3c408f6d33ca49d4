package handlers

import (
	"net/http"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const maxUploadFiles = 10

// MediaHandler accepts multipart uploads and returns hosted URLs.
type MediaHandler struct {
	media *services.MediaService
}

func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media", h.Upload)
}

// Upload stores every file in the "files" form field.
func (h *MediaHandler) Upload(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return models.NewValidationError("expected multipart form data")
	}
	headers := form.File["files"]
	if len(headers) > maxUploadFiles {
		return models.NewValidationError("too many files")
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return models.NewValidationError("unreadable file " + fh.Filename)
		}
		defer f.Close()
		uploads = append(uploads, services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
	}

	assets, err := h.media.Upload(c.Request().Context(), userID, uploads)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, assets)
}
