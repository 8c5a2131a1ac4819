package config

import (
	detectionHandler "MoodMate/internal/api/detection/handler"
	detectionService "MoodMate/internal/api/detection/service"
	recommendationHandler "MoodMate/internal/api/recommendation/handler"
	recommendationService "MoodMate/internal/api/recommendation/service"
	reportHandler "MoodMate/internal/api/report/handler"
	reportService "MoodMate/internal/api/report/service"
	sessionHandler "MoodMate/internal/api/session/handler"
	sessionRepository "MoodMate/internal/api/session/repository"
	sessionService "MoodMate/internal/api/session/service"
	"MoodMate/internal/middleware"
	"MoodMate/pkg/catalog"
	"MoodMate/pkg/detector"
	"MoodMate/pkg/redis"
	"MoodMate/pkg/report"
	"MoodMate/pkg/s3"
	"MoodMate/pkg/utils"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const defaultSessionTTL = time.Hour

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	detector    detector.IDetector
	catalog     catalog.ICatalog
	exporter    report.IExporter
	redisServer redis.IRedis
	sessionRepo sessionRepository.Repository
	sessionTTL  time.Duration
	s3Client    s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{sessionTTL: defaultSessionTTL}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("emotion detector is required")
	}
	if server.sessionRepo == nil {
		server.sessionRepo = sessionRepository.NewMemory(server.sessionTTL, server.log)
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.catalog == nil {
		if err := WithCatalog()(server); err != nil {
			return nil, err
		}
	}
	if server.exporter == nil {
		if err := WithExporter()(server); err != nil {
			return nil, err
		}
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithDetector(d detector.IDetector) ServerOption {
	return func(s *Server) error {
		s.detector = d
		return nil
	}
}

func WithCatalog() ServerOption {
	return func(s *Server) error {
		c, err := catalog.Load()
		if err != nil {
			return fmt.Errorf("failed to load recommendation catalog: %w", err)
		}
		s.catalog = c
		return nil
	}
}

// WithSessionStore picks the session store from SESSION_STORE (memory or redis) with the
// SESSION_TTL lifetime.
func WithSessionStore() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before the session store")
		}

		if raw := os.Getenv("SESSION_TTL"); raw != "" {
			ttl, err := time.ParseDuration(raw)
			if err != nil || ttl <= 0 {
				return fmt.Errorf("invalid SESSION_TTL %q", raw)
			}
			s.sessionTTL = ttl
		}

		switch strings.ToLower(os.Getenv("SESSION_STORE")) {
		case "", "memory":
			s.sessionRepo = sessionRepository.NewMemory(s.sessionTTL, s.log)
		case "redis":
			client, err := redis.New()
			if err != nil {
				s.log.Errorf("Failed to connect to Redis: %v", err)
				return fmt.Errorf("failed to create redis session store: %w", err)
			}
			s.redisServer = client
			s.sessionRepo = sessionRepository.NewRedis(client, s.sessionTTL, s.log)
		default:
			return fmt.Errorf("unknown SESSION_STORE %q", os.Getenv("SESSION_STORE"))
		}

		return nil
	}
}

func WithExporter() ServerOption {
	return func(s *Server) error {
		exporter, err := report.New(os.Getenv("OUTPUT_DIR"), s.log)
		if err != nil {
			return fmt.Errorf("failed to create report exporter: %w", err)
		}
		s.exporter = exporter
		return nil
	}
}

// WithS3Client is only needed when reports are uploaded.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Session Domain
	sessionServices := sessionService.NewSessionService(s.log, s.sessionRepo, s.sessionTTL)
	sessionHandlers := sessionHandler.New(s.log, s.middleware, sessionServices)

	// Recommendation
	recommendationServices := recommendationService.NewRecommendationService(s.log, s.catalog, sessionServices)
	recommendationHandlers := recommendationHandler.New(s.log, s.middleware, recommendationServices)

	// Detection
	detectionServices := detectionService.NewDetectionService(s.log, s.detector, s.utils, sessionServices, recommendationServices)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices, s.utils)

	// Report
	reportServices := reportService.NewReportService(s.log, s.exporter, sessionServices, s.s3Client)
	reportHandlers := reportHandler.New(s.log, s.validator, s.middleware, reportServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, sessionHandlers, recommendationHandlers, detectionHandlers, reportHandlers)
}

func (s *Server) mountRoutes() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.engine.Use(s.middleware.NewRateLimiter)

	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	s.mountRoutes()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, waits for in-flight ones up to timeout and then
// releases the detector and the session store.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	if cerr := s.detector.Close(); cerr != nil {
		s.log.Warnf("Failed to close emotion detector: %v", cerr)
	}
	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Warnf("Failed to close redis client: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
