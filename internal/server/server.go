// Package server is the local HTTP and WebSocket facade the mobile UI talks
// to. Handlers delegate to the gateway; the UI renders exclusively from
// snapshot reads and the snapshot stream.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kanishk-8/EcoCircle/internal/analytics"
	"github.com/kanishk-8/EcoCircle/internal/auth"
	"github.com/kanishk-8/EcoCircle/internal/cache"
	"github.com/kanishk-8/EcoCircle/internal/config"
	"github.com/kanishk-8/EcoCircle/internal/database"
	"github.com/kanishk-8/EcoCircle/internal/gateway"
	"github.com/kanishk-8/EcoCircle/internal/middleware"
	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/moderation"
	"github.com/kanishk-8/EcoCircle/internal/objectstore"
	"github.com/kanishk-8/EcoCircle/internal/storage"
	"github.com/kanishk-8/EcoCircle/internal/storage/inmemory"
	"github.com/kanishk-8/EcoCircle/internal/storage/postgres"
	"github.com/kanishk-8/EcoCircle/internal/syncstore"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.ContentStore
	gateway        *gateway.Gateway
	sync           *syncstore.Store
	analytics      *analytics.Service
	session        *auth.Session
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer creates the engine with all dependencies wired. In offline mode
// content lives in process memory and moderation is disabled; no database or
// Redis connection is attempted.
func New(cfg *config.Config) (*Server, error) {
	var (
		db    *gorm.DB
		store storage.ContentStore
	)
	if cfg.OfflineMode {
		store = inmemory.New()
	} else {
		conn, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		db = conn
		store = postgres.New(db)

		cache.InitRedis(cfg.RedisURL)
	}

	var session *auth.Session
	if cfg.SessionToken != "" {
		s, err := auth.FromToken(cfg.SessionToken, cfg.SessionSecret)
		if err != nil {
			return nil, fmt.Errorf("invalid session token: %w", err)
		}
		session = s
	}

	var mod moderation.Classifier = moderation.Disabled{}
	if !cfg.OfflineMode && cfg.ModerationURL != "" {
		mod = moderation.NewClient(
			cfg.ModerationURL,
			cfg.ModerationAPIKey,
			cfg.ModerationModel,
			time.Duration(cfg.ModerationTimeoutMS)*time.Millisecond,
		)
	}

	objects := objectstore.NewLocal(cfg.MediaDir, cfg.MediaBaseURL, cfg.MediaMaxUploadMB)
	sync := syncstore.New()

	return &Server{
		config:         cfg,
		db:             db,
		redis:          cache.GetClient(),
		store:          store,
		gateway:        gateway.New(store, objects, mod, session, sync),
		sync:           sync,
		analytics:      analytics.NewService(store, nil),
		session:        session,
		promMiddleware: fiberprometheus.New("ecocircle-engine"),
	}, nil
}

// SetupMiddleware configures the middleware chain for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// The facade serves the UI shell on the same machine.
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:8081,http://localhost:19006,http://127.0.0.1:8081",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection",
	}))
}

// SetupRoutes configures all routes for the facade.
func (s *Server) SetupRoutes(app *fiber.App) {
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/health", s.HealthCheck)
	app.Static("/media", s.config.MediaDir)

	api := app.Group("/api", middleware.SessionGate(s.config.SessionToken))

	api.Get("/snapshot", s.GetSnapshot)
	api.Get("/ws/snapshot", s.SnapshotStreamUpgrade, s.SnapshotStream())

	api.Get("/analytics/daily", s.GetDailyAnalytics)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	// Specific /:id/:resource routes before generic /:id routes.
	posts.Post("/:id/like", s.ToggleLike)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	api.Get("/users/:id/posts", s.GetUserPosts)

	comments := api.Group("/comments")
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	api.Post("/current-post/clear", s.ClearCurrentPost)
	api.Post("/errors/clear", s.ClearError)
}

// HealthCheck handles health check requests.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	switch {
	case s.db == nil:
		dbStatus = "offline"
	default:
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
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
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "EcoCircle engine",
		"status":  "healthy",
		"checks": fiber.Map{
			"content_store": dbStatus,
			"redis":         redisStatus,
		},
		"authenticated": s.session != nil,
		"offline":       s.config.OfflineMode,
		"time":          time.Now(),
	})
}

// App builds a configured Fiber app ready to listen.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "EcoCircle Engine",
		BodyLimit: (s.config.MediaMaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Printf("error closing sql DB: %v", cerr)
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	return nil
}
