// Package server contains the HTTP handlers for the circles API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "mentorcircles/docs" // swagger docs
	"mentorcircles/internal/bootstrap"
	"mentorcircles/internal/cache"
	"mentorcircles/internal/config"
	"mentorcircles/internal/featureflags"
	"mentorcircles/internal/middleware"
	"mentorcircles/internal/models"
	"mentorcircles/internal/repository"
	"mentorcircles/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	userService        *service.UserService
	circleService      *service.CircleService
	applicationService *service.ApplicationService
	changeService      *service.ChangeService
	lifecycleService   *service.LifecycleService
	roomService        *service.RoomService
	followService      *service.FollowService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional: a nil client disables caching and rate limiting.
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{SeedDemo: cfg.SeedDemo})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("server requires config and database")
	}

	store := repository.NewStore(db)
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	rooms := repository.NewRoomRepository(db)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	var inv service.Invalidator = service.NewCacheInvalidator(redisClient)

	defaults := service.CircleDefaults{
		MaxCapacity:   cfg.DefaultCircleCapacity,
		DurationWeeks: cfg.DefaultCircleDurationWeeks,
		ListTTL:       time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}

	return &Server{
		config:             cfg,
		db:                 db,
		redis:              redisClient,
		promMiddleware:     middleware.InitMetrics("mentorcircles-api"),
		featureFlags:       flags,
		userService:        service.NewUserService(users, redisClient),
		circleService:      service.NewCircleService(store, users, follows, cache.NewAside(redisClient), defaults, inv),
		applicationService: service.NewApplicationService(store, flags, inv),
		changeService:      service.NewChangeService(store, flags, inv),
		lifecycleService:   service.NewLifecycleService(store, flags, inv),
		roomService:        service.NewRoomService(store, rooms, inv),
		followService:      service.NewFollowService(follows, users),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so 429 responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public circle browsing
	api.Get("/circles", s.ListCircles)
	api.Get("/circles/:id", s.GetCircle)
	api.Get("/mentors/:id/circles", s.ListCirclesByMentor)

	protected := api.Group("", s.AuthRequired())
	protected.Get("/feature-flags", s.GetFeatureFlags)

	circles := protected.Group("/circles")
	circles.Post("/", middleware.RateLimit(s.redis, 10, time.Hour, "create_circle"), s.CreateCircle)
	circles.Post("/:id/publish", s.PublishCircle)
	circles.Post("/:id/close", s.CloseCircleApplications)
	circles.Post("/:id/reopen", s.ReopenCircleApplications)
	circles.Post("/:id/complete", s.CompleteCircle)

	circles.Post("/:id/applications", middleware.RateLimit(
		s.redis, 5, time.Minute, "apply"), s.SubmitApplication)
	circles.Get("/:id/applications", s.ListApplications)
	circles.Post("/:id/applications/:applicationId/review", s.ReviewApplication)

	circles.Post("/:id/updates", middleware.RateLimit(
		s.redis, 10, time.Minute, "propose_update"), s.ProposeCircleUpdate)
	circles.Get("/:id/updates", s.ListPendingChangeRequests)
	circles.Post("/:id/updates/:requestId/approve", s.ApproveCircleUpdateRequest)

	circles.Get("/:id/room", s.GetRoom)
	circles.Post("/:id/sessions", s.AddSession)
	circles.Post("/:id/sessions/:sessionId/complete", s.CompleteSession)
	circles.Post("/:id/resources", s.AddResource)
	circles.Delete("/:id/resources/:resourceId", s.DeleteResource)
	circles.Post("/:id/discussion", middleware.RateLimit(
		s.redis, 20, time.Minute, "discussion"), s.PostDiscussion)

	pitches := protected.Group("/pitches")
	pitches.Post("/", middleware.RateLimit(s.redis, 5, time.Hour, "pitch"), s.SubmitPitch)
	pitches.Get("/incoming", s.ListPitchRequests)
	pitches.Post("/:id/accept", s.AcceptPitch)
	pitches.Post("/:id/decline", s.DeclinePitch)

	me := protected.Group("/me")
	me.Get("/applications", s.ListMyApplications)
	me.Get("/circles", s.ListMyCircles)

	mentors := protected.Group("/mentors")
	mentors.Get("/", s.ListMentors)
	mentors.Post("/:id/follow", s.FollowMentor)
	mentors.Delete("/:id/follow", s.UnfollowMentor)

	protected.Get("/users/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "user_search"), s.SearchUsers)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired verifies the bearer token issued by the identity provider,
// rejects revoked tokens and mirrors the caller into the users table.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := middleware.BearerToken(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError())
		}

		identity, err := middleware.VerifyToken(token, s.config)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				&models.AppError{Code: models.CodeUnauthenticated, Message: "Invalid or expired token"})
		}

		if identity.TokenID != "" && s.userService != nil {
			revoked, err := s.userService.IsTokenRevoked(c.UserContext(), identity.TokenID)
			if err == nil && revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					&models.AppError{Code: models.CodeUnauthenticated, Message: "Token has been revoked"})
			}
		}

		middleware.SetCaller(c, identity)

		if s.userService != nil {
			if err := s.userService.SyncIdentity(c.UserContext(), identity); err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "identity sync failed",
					slog.String("error", err.Error()))
			}
		}

		return c.Next()
	}
}

// GetFeatureFlags returns configured feature flags and evaluated state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:      "Mentor Circles API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// errorHandler turns errors returned by handlers (or fiber itself) into the
// standard error body.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
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
