package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, r, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) Create(ctx context.Context, asset *models.MediaAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockMediaRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int64) ([]models.MediaAsset, error) {
	args := m.Called(ctx, ownerID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MediaAsset), args.Error(1)
}

func TestMediaUpload(t *testing.T) {
	ctx := context.Background()
	isKey := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "media/u1/") && strings.HasSuffix(key, ".jpg")
	})

	t.Run("stores and records each file", func(t *testing.T) {
		store := new(MockStorage)
		assets := new(MockMediaRepository)
		store.On("Write", ctx, isKey, mock.Anything, int64(3), "image/jpeg").Return(nil)
		store.On("URL", ctx, isKey).Return("https://cdn.example.com/x.jpg", nil)
		assets.On("Create", ctx, mock.AnythingOfType("*models.MediaAsset")).Return(nil)

		svc := NewMediaService(store, assets, testutil.FixedClock())
		out, err := svc.Upload(ctx, "u1", []Upload{{Filename: "Photo.JPG", ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("abc")}})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "https://cdn.example.com/x.jpg", out[0].URL)
		assert.Equal(t, "u1", out[0].OwnerID)
		assert.Equal(t, testutil.FixedClock().Now(), out[0].CreatedAt)

		store.AssertExpectations(t)
		assets.AssertExpectations(t)
	})

	t.Run("metadata failure does not fail the upload", func(t *testing.T) {
		store := new(MockStorage)
		assets := new(MockMediaRepository)
		store.On("Write", ctx, isKey, mock.Anything, int64(1), "image/jpeg").Return(nil)
		store.On("URL", ctx, isKey).Return("https://cdn.example.com/y.jpg", nil)
		assets.On("Create", ctx, mock.Anything).Return(errors.New("mongo down"))

		svc := NewMediaService(store, assets, nil)
		out, err := svc.Upload(ctx, "u1", []Upload{{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("a")}})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("rejects non-media before writing anything", func(t *testing.T) {
		store := new(MockStorage)
		svc := NewMediaService(store, nil, nil)
		_, err := svc.Upload(ctx, "u1", []Upload{
			{Filename: "a.jpg", ContentType: "image/jpeg", Body: strings.NewReader("a")},
			{Filename: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("b")},
		})
		assertCode(t, err, models.CodeValidation)
		store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		store := new(MockStorage)
		store.On("Write", ctx, isKey, mock.Anything, int64(1), "image/jpeg").Return(errors.New("s3 unavailable"))
		svc := NewMediaService(store, nil, nil)
		_, err := svc.Upload(ctx, "u1", []Upload{{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("a")}})
		assertCode(t, err, models.CodeStorage)
	})

	t.Run("no files", func(t *testing.T) {
		_, err := NewMediaService(new(MockStorage), nil, nil).Upload(ctx, "u1", nil)
		assertCode(t, err, models.CodeValidation)
	})
}
