// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/publicid"
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
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *database.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	tweetRepo        repository.TweetRepository
	likeRepo         repository.EngagementRepository
	retweetRepo      repository.EngagementRepository
	bookmarkRepo     repository.EngagementRepository
	followRepo       repository.FollowRepository
	notificationRepo repository.NotificationRepository
	hashtagRepo      repository.HashtagRepository
	draftRepo        repository.DraftRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub

	userService         *service.UserService
	tweetService        *service.TweetService
	timelineService     *service.TimelineService
	engagementService   *service.EngagementService
	followService       *service.FollowService
	notificationService *service.NotificationService
	hashtagService      *service.HashtagService
	draftService        *service.DraftService
	reconcileService    *service.ReconcileService
	interactionService  *service.InteractionService
}

// NewServer creates a new server instance with all dependencies
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
func NewServerWithDeps(cfg *config.Config, db *database.DB, redisClient *redis.Client) (*Server, error) {
	idGen, err := publicid.NewGenerator(cfg.PublicIDKey)
	if err != nil {
		return nil, fmt.Errorf("public id generator: %w", err)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("chirp-api"),
	}

	if db != nil {
		server.userRepo = repository.NewUserRepository(db.Collection(database.CollectionUsers))
		server.tweetRepo = repository.NewTweetRepository(db.Collection(database.CollectionTweets))
		server.likeRepo = repository.NewEngagementRepository(db.Collection(database.CollectionLikes))
		server.retweetRepo = repository.NewEngagementRepository(db.Collection(database.CollectionRetweets))
		server.bookmarkRepo = repository.NewEngagementRepository(db.Collection(database.CollectionBookmarks))
		server.followRepo = repository.NewFollowRepository(db.Collection(database.CollectionFollows))
		server.notificationRepo = repository.NewNotificationRepository(db.Collection(database.CollectionNotifications))
		server.hashtagRepo = repository.NewHashtagRepository(db.Collection(database.CollectionHashtags))
		server.draftRepo = repository.NewDraftRepository(db.Collection(database.CollectionDrafts))
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}

	var tx service.TxRunner
	if cfg.UseTransactions && db != nil {
		tx = db.WithTransaction
	}

	var notifier service.Notifier
	if server.notifier != nil {
		notifier = server.notifier
	}

	server.notificationService = service.NewNotificationService(server.notificationRepo, notifier)
	server.interactionService = service.NewInteractionService(server.likeRepo, server.retweetRepo, server.bookmarkRepo)
	server.userService = service.NewUserService(server.userRepo)
	server.tweetService = service.NewTweetService(
		server.tweetRepo, server.userRepo, server.hashtagRepo,
		server.likeRepo, server.retweetRepo, server.bookmarkRepo,
		server.notificationService, server.interactionService, idGen, tx)
	server.timelineService = service.NewTimelineService(
		server.tweetRepo, server.retweetRepo, server.likeRepo,
		server.followRepo, server.userRepo, server.interactionService,
		cfg.TimelineIncludeReplies)
	server.engagementService = service.NewEngagementService(
		server.likeRepo, server.retweetRepo, server.bookmarkRepo,
		server.tweetRepo, server.userRepo, server.notificationService, tx)
	server.followService = service.NewFollowService(
		server.followRepo, server.userRepo, server.notificationService, tx)
	server.hashtagService = service.NewHashtagService(server.hashtagRepo)
	server.draftService = service.NewDraftService(server.draftRepo)
	server.reconcileService = service.NewReconcileService(
		server.tweetRepo, server.userRepo, server.likeRepo, server.retweetRepo, server.followRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Distributed tracing before the context middleware so trace IDs land in logs
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and acting username
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Chirp Backend Metrics Dashboard",
	}))

	// Users
	api.Post("/users", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "signup"), s.CreateUser)
	api.Get("/users", s.GetUser)

	// Tweets: a single /post resource whose GET dispatches on query shape
	api.Get("/post", s.GetPost)
	api.Post("/post", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_tweet"), s.CreatePost)
	api.Delete("/post", s.DeletePost)

	// Engagement toggles
	api.Post("/like", s.ToggleLike)
	api.Post("/retweets", s.ToggleRetweet)
	api.Post("/bookmark", s.ToggleBookmark)
	api.Post("/follows", s.ToggleFollow)

	// Notifications
	api.Get("/notifications", s.GetNotifications)
	api.Patch("/notifications", s.MarkNotificationRead)
	api.Put("/notifications", s.MarkAllNotificationsRead)

	// Hashtags
	api.Get("/hashtags", s.GetHashtags)
	api.Put("/hashtags", s.ExtractText)

	// Drafts
	api.Get("/drafts", s.GetDrafts)
	api.Post("/drafts", s.CreateDraft)
	api.Delete("/drafts", s.DeleteDraft)

	// Counter reconciliation
	admin := api.Group("/admin")
	admin.Put("/reconcile", middleware.RateLimitWithPolicy(
		s.redis, 10, time.Minute, middleware.FailOpen, "reconcile"), s.Reconcile)

	// Websocket endpoint for realtime notifications
	api.Get("/ws", s.WebsocketUpgrade, s.WebsocketHandler())
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
	if s.db == nil {
		dbStatus = "unavailable"
	} else if err := s.db.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Realtime push and caching degrade without Redis but the API works
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Chirp API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to the Redis subscriber if available
	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close WebSocket connections gracefully
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(ctx); err != nil {
			log.Printf("error closing mongo client: %v", err)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
