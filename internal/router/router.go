package router

import (
	"github.com/anonto42/instaclone/backend/internal/handlers"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/pkg/clock"
	"github.com/anonto42/instaclone/backend/pkg/config"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/anonto42/instaclone/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps are the external resources the routes are built on. Mongo, Firebase
// and Storage are optional.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Mongo    *mongo.Database
	Firebase middleware.FirebaseVerifier
	Registry realtime.Registry
	Storage  storage.Storage
	Clock    clock.Clock
}

// SetupMiddleware configures global Echo middleware, validation and error rendering.
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(cfg.IsProduction())
	e.Validator = handlers.NewValidator()
	config.SetupMiddleware(e, cfg, metrics.EchoMiddleware())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	log := logger.L()
	cfg := d.Config

	e.GET("/health", handlers.NewHealthHandler(d.DB, cfg.Log.ServiceName).HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(d.DB)
	postRepo := repositories.NewPostgresPostRepository(d.DB)
	commentRepo := repositories.NewPostgresCommentRepository(d.DB)
	likeRepo := repositories.NewPostgresLikeRepository(d.DB)
	followRepo := repositories.NewPostgresFollowRepository(d.DB)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(d.DB)
	storyRepo := repositories.NewPostgresStoryRepository(d.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(d.DB)
	messageRepo := repositories.NewPostgresMessageRepository(d.DB)

	// --- Services ---
	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	notifier := services.NewNotificationService(notificationRepo, userRepo, d.Registry)
	authSvc := services.NewAuthService(userRepo, tokens)
	postSvc := services.NewPostService(d.DB, postRepo, userRepo, commentRepo, likeRepo, savedPostRepo, notificationRepo, notifier)
	commentSvc := services.NewCommentService(d.DB, commentRepo, postRepo, userRepo, likeRepo, notificationRepo, notifier)
	socialSvc := services.NewSocialService(d.DB, userRepo, followRepo, notificationRepo, notifier)
	storySvc := services.NewStoryService(d.DB, storyRepo, userRepo, d.Clock)
	messageSvc := services.NewMessageService(messageRepo, userRepo, d.Registry)

	// --- Identity ---
	chain := middleware.Chain{middleware.JWTResolver{Tokens: tokens}}
	if d.Firebase != nil {
		chain = append(chain, middleware.FirebaseResolver{Verifier: d.Firebase, Users: userRepo})
	}
	chain = append(chain, middleware.SessionResolver{Tokens: tokens})
	authn := middleware.NewAuthenticator(chain, cfg.SessionCookie)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(authSvc, d.Firebase, handlers.SessionCookie{
		Name:   cfg.SessionCookie,
		Secure: cfg.IsProduction(),
	}).RegisterAuthRoutes(authGroup)

	// --- Protected routes ---
	api := e.Group("/api/v1", authn.Require())

	handlers.NewUserHandler(socialSvc, postSvc).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(socialSvc).RegisterFollowRoutes(api)
	handlers.NewPostHandler(postSvc).RegisterPostRoutes(api)
	handlers.NewFeedHandler(postSvc).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(postSvc, commentSvc).RegisterLikeRoutes(api)
	handlers.NewSavedPostHandler(postSvc).RegisterSavedPostRoutes(api)
	handlers.NewCommentHandler(commentSvc).RegisterCommentRoutes(api)
	handlers.NewStoryHandler(storySvc).RegisterStoryRoutes(api)
	handlers.NewNotificationHandler(notifier).RegisterNotificationRoutes(api)
	handlers.NewMessageHandler(messageSvc).RegisterMessageRoutes(api)

	if d.Storage != nil {
		var mediaRepo repositories.MediaRepository
		if d.Mongo != nil {
			mediaRepo = repositories.NewMongoMediaRepository(d.Mongo)
		}
		handlers.NewMediaHandler(services.NewMediaService(d.Storage, mediaRepo, d.Clock)).RegisterMediaRoutes(api)
	} else {
		log.Info().Msg("S3_BUCKET not set, media upload disabled")
	}

	handlers.NewWSHandler(d.Registry, authn, messageSvc, notifier, cfg.Origins()).RegisterRoutes(e)

	log.Info().Int("routes", len(e.Routes())).Msg("All routes configured")
}
