// Package server contains the HTTP handlers for the chirp API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "chirp/docs" // swagger docs
	"chirp/internal/auth"
	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/featureflags"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "chirp-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.TokenManager
	flags          *featureflags.Manager
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer connects to the database and Redis and builds a Server on top.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
// redisClient may be nil: rate limits then fail open and logout reports
// the revocation store as unavailable.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		tokens:         auth.NewTokenManager(cfg.JWTSecret, ttl, redisClient),
		flags:          featureflags.NewManager(cfg.FeatureFlags),
		userService:    service.NewUserService(userRepo, auth.BcryptHasher{}),
		postService:    service.NewPostService(postRepo, userRepo),
		commentService: service.NewCommentService(commentRepo, postRepo, userRepo),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	authed := middleware.AuthRequired(s.tokens)
	viewer := middleware.OptionalAuth(s.tokens)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Chirp API Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/features", viewer, s.GetFeatures)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", authed, s.Logout)
	authGroup.Get("/me", authed, s.GetMyProfile)

	// Post routes. Specific /:id/:resource routes before generic /:id.
	posts := api.Group("/posts")
	posts.Get("/", viewer, s.GetPosts)
	posts.Post("/", authed, middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/comments", viewer, s.GetComments)
	posts.Post("/:id/comments", authed, middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/like", authed, middleware.RateLimit(
		s.redis, 60, time.Minute, "like"), s.TogglePostLike)
	posts.Get("/:id", viewer, s.GetPost)
	posts.Put("/:id", authed, s.UpdatePost)
	posts.Delete("/:id", authed, s.DeletePost)

	// Comment routes
	comments := api.Group("/comments")
	comments.Get("/:id/replies", viewer, s.GetReplies)
	comments.Post("/:id/like", authed, middleware.RateLimit(
		s.redis, 60, time.Minute, "like"), s.ToggleCommentLike)
	comments.Get("/:id", viewer, s.GetComment)
	comments.Put("/:id", authed, s.UpdateComment)
	comments.Delete("/:id", authed, s.DeleteComment)

	// User routes. /me routes before generic /:id.
	users := api.Group("/users")
	users.Get("/me", authed, s.GetMyProfile)
	users.Put("/me", authed, s.UpdateMyProfile)
	users.Put("/me/password", authed, middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "change_password"), s.ChangePassword)
	users.Delete("/me", authed, s.DeactivateMe)
	users.Get("/:id/posts", viewer, s.GetUserPosts)
	users.Get("/:id/comments", viewer, s.GetUserComments)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Post("/:id/follow", authed, middleware.RateLimit(
		s.redis, 30, time.Minute, "follow"), s.FollowUser)
	users.Delete("/:id/follow", authed, s.UnfollowUser)
	users.Get("/:id", s.GetUserProfile)
	users.Put("/:id", authed, s.UpdateUser)
	users.Delete("/:id", authed, s.DeactivateUser)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Only the database gates
// readiness; a Redis outage degrades rate limiting and logout but the API
// keeps serving.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus != "healthy":
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"service": serviceName,
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// errorHandler renders errors that escape a handler.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// NewApp builds a Fiber app with the full middleware chain and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Chirp API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
