package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/writebench/pkg/results"
)

// Server is the HTTP API server over persisted benchmark results.
type Server struct {
	config Config
	reader results.Reader
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The reader is injected so the server
// can share a results store with the eval pipeline.
func NewServer(config Config, reader results.Reader, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		reader: reader,
		logger: logger,
		app:    app,
	}

	app.Get("/healthz", s.handleHealthz)
	app.Get("/api/v1/results", s.handleListResults)
	app.Get("/api/v1/results/summary", s.handleResultsSummary)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting results API server",
		slog.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
