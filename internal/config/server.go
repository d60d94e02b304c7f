package config

import (
	measurementHandler "BodyMeasure/internal/api/measurement/handler"
	measurementService "BodyMeasure/internal/api/measurement/service"
	"BodyMeasure/internal/middleware"
	"BodyMeasure/pkg/gemini"
	"BodyMeasure/pkg/pose"
	"BodyMeasure/pkg/utils"
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine     *fiber.App
	log        *logrus.Logger
	env        *Env
	middleware middleware.Middleware
	validator  *validator.Validate
	utils      utils.IUtils
	detector   pose.Detector
	handlers   []handler
	routed     bool
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

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
	if server.env == nil {
		return nil, fmt.Errorf("environment is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("pose detector is required")
	}
	if server.utils == nil {
		server.utils = utils.New()
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

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		s.env = env
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

// WithPoseDetector builds the detector selected by POSE_DETECTOR. It is created once and shared by all requests.
func WithPoseDetector() ServerOption {
	return func(s *Server) error {
		if s.env == nil || s.log == nil {
			return fmt.Errorf("environment and logger must be initialized before pose detector")
		}

		switch s.env.PoseDetector {
		case PoseDetectorGemini:
			client, err := gemini.NewGeminiClient(context.Background(), s.env.GeminiAPIKey, s.env.GeminiModelName)
			if err != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.detector = pose.NewGeminiDetector(client, s.log)
		case PoseDetectorWebsocket:
			s.detector = pose.NewWebsocketDetector(pose.DefaultWebsocketConfig(s.env.PoseDetectionURL), s.log)
		default:
			return fmt.Errorf("unknown pose detector %q", s.env.PoseDetector)
		}
		return nil
	}
}

func WithDetector(detector pose.Detector) ServerOption {
	return func(s *Server) error {
		s.detector = detector
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
	// Measurement Domain
	measurementServices := measurementService.NewMeasurementService(s.log, s.detector)
	measurementHandlers := measurementHandler.New(s.log, s.middleware, measurementServices, s.utils, s.env.RequestTimeout)

	s.handlers = append(s.handlers, measurementHandlers)
}

// App mounts the middleware chain and every registered route, then returns the engine.
func (s *Server) App() *fiber.App {
	if s.routed {
		return s.engine
	}
	s.routed = true

	s.engine.Use(cors.New(cors.Config{
		AllowOrigins: s.env.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	s.setupHealthCheck()

	for _, h := range s.handlers {
		h.Start(s.engine)
	}

	if s.env.StaticDir != "" {
		s.engine.Static("/", s.env.StaticDir, fiber.Static{
			Index: "index.html",
		})
	}

	return s.engine
}

func (s *Server) Run() error {
	app := s.App()

	s.log.WithFields(logrus.Fields{
		"address":       s.env.Address(),
		"pose_detector": s.env.PoseDetector,
	}).Info("Starting HTTP server")

	return app.Listen(s.env.Address())
}

func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.engine.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}
	if err := s.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close pose detector: %w", err))
	}

	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
