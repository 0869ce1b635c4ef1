// Package server contains the HTTP layer of the board: middleware, routes and page handlers.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"board/internal/config"
	"board/internal/kvstore"
	"board/internal/middleware"
	"board/internal/repository"
	"board/internal/service"
	"board/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const serviceName = "board"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	views          *html.Engine
	promMiddleware *fiberprometheus.FiberPrometheus
	board          *service.BoardService
}

// NewServer connects to the store described by cfg and builds the server around it.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rdb, err := kvstore.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, rdb)
}

// NewServerWithDeps creates a Server using an already-initialized Redis client.
// Use this in tests or when the caller owns the connection.
func NewServerWithDeps(cfg *config.Config, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if redisClient == nil {
		return nil, errors.New("redis client is required")
	}

	postRepo := repository.NewPostRepository(redisClient)
	commentRepo := repository.NewCommentRepository(redisClient)

	views := html.NewFileSystem(web.Templates(), ".html")
	views.Reload(cfg.TemplateReload)

	return &Server{
		config:         cfg,
		redis:          redisClient,
		views:          views,
		promMiddleware: middleware.InitMetrics(serviceName),
		board:          service.NewBoardService(postRepo, commentRepo),
	}, nil
}

// FiberConfig returns the app settings the server's handlers rely on: the template
// engine with its base layout and the error handler that renders 404 pages.
func (s *Server) FiberConfig() fiber.Config {
	return fiber.Config{
		AppName:      "Board",
		Views:        s.views,
		ViewsLayout:  "layouts/base",
		ErrorHandler: s.ErrorHandler,
		UnescapePath: true,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// NewApp builds a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(s.FiberConfig())
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Tracing runs first so the context middleware can pick up the trace ID.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// Only submissions are limited; storage is in-memory so no keys land in the board keyspace.
	if s.config.RateLimitMax > 0 {
		window := time.Duration(s.config.RateLimitWindowSeconds) * time.Second
		if window <= 0 {
			window = time.Minute
		}
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.RateLimitMax,
			Expiration: window,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() != fiber.MethodPost
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
			},
		}))
	}
}

// SetupRoutes configures all routes for the application.
// Fixed paths are registered before the board endpoints because "/:id" matches any segment.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.config.WithStatic {
		app.Use("/static", filesystem.New(filesystem.Config{
			Root:   web.Static(),
			MaxAge: 3600,
		}))
	}

	s.registerEndpoints(app)
}

// Shutdown releases the server's resources.
func (s *Server) Shutdown(_ context.Context) error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	redisStatus := "healthy"
	status := fiber.StatusOK
	if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": redisStatus,
		"checks": fiber.Map{
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}
