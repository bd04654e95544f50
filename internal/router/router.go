package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/spinforge/backend/internal/auth"
	"github.com/anonto42/spinforge/backend/internal/events"
	"github.com/anonto42/spinforge/backend/internal/handlers"
	"github.com/anonto42/spinforge/backend/internal/middleware"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"github.com/anonto42/spinforge/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps are the connections and shared services the routes are built from.
// Mongo, Redis and Firebase are optional.
type Deps struct {
	SQL           *gorm.DB
	Mongo         *mongo.Client
	MongoDatabase string
	Redis         *redis.Client
	Tokens        *auth.TokenService
	Passwords     *auth.PasswordHasher
	Firebase      services.IDTokenVerifier
	Logger        *slog.Logger
}

// SetupRoutes migrates the schema, wires repositories, services and handlers,
// and mounts every route under /api/v1.
func SetupRoutes(e *echo.Echo, deps Deps) error {
	logger := deps.Logger
	if deps.Passwords == nil {
		deps.Passwords = auth.NewPasswordHasher()
	}

	if err := repositories.Migrate(deps.SQL); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Info("auto-migrations completed for all models")

	e.HTTPErrorHandler = HTTPErrorHandler(logger)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.SQL)
	profileRepo := repositories.NewPostgresProfileRepository(deps.SQL)
	postRepo := repositories.NewPostgresPostRepository(deps.SQL)
	commentRepo := repositories.NewPostgresCommentRepository(deps.SQL)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.SQL)
	activityRepo := repositories.NewPostgresActivityRepository(deps.SQL)
	learningRepo := repositories.NewPostgresLearningRepository(deps.SQL)

	var revoker repositories.TokenRevoker
	if deps.Redis != nil {
		revoker = repositories.NewRedisTokenRevoker(deps.Redis)
		logger.Info("token revocation backed by Redis")
	} else {
		revoker = repositories.NewPostgresTokenRevoker(deps.SQL)
	}

	// --- Initialize Services ---
	notificationService := services.NewNotificationService(notificationRepo, activityRepo, logger)
	notificationService.RegisterResolver("post", func(ctx context.Context, id uint) (models.RelatedObject, error) {
		post, err := postRepo.GetPostByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return post, nil
	})
	notificationService.RegisterResolver("comment", func(ctx context.Context, id uint) (models.RelatedObject, error) {
		comment, err := commentRepo.GetCommentByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return comment, nil
	})
	if deps.Mongo != nil {
		archive := repositories.NewMongoActivityArchive(deps.Mongo.Database(deps.MongoDatabase))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := archive.EnsureIndexes(ctx); err != nil {
			logger.Warn("activity archive indexes not ensured", slog.String("error", err.Error()))
		}
		cancel()
		notificationService.SetArchive(archive)
		logger.Info("activity archive enabled", slog.String("database", deps.MongoDatabase))
	}

	dispatcher := events.NewDispatcher(notificationService, commentRepo, logger)

	authService := services.NewAuthService(userRepo, deps.Tokens, deps.Passwords, revoker, logger)
	if deps.Firebase != nil {
		authService.SetFirebase(deps.Firebase)
	}
	profileService := services.NewProfileService(userRepo, profileRepo)
	postService := services.NewPostService(postRepo, commentRepo, dispatcher, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, dispatcher)
	learningService := services.NewLearningService(learningRepo)

	// Anonymous requests pass; routes that need a user add RequireUser.
	api := e.Group("/api/v1", middleware.OptionalJWTAuth(deps.Tokens))

	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterAuthRoutes(api.Group("/auth"))

	profileHandler := handlers.NewProfileHandler(profileService)
	profileHandler.RegisterProfileRoutes(api)

	postHandler := handlers.NewPostHandler(postService)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentService)
	commentHandler.RegisterCommentRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)

	learningHandler := handlers.NewLearningHandler(learningService)
	learningHandler.RegisterLearningRoutes(api.Group("/learning"))

	logger.Info("all routes configured")
	return nil
}
