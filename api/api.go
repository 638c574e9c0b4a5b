package api

import (
	"errors"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/api/mcp"
	"github.com/papercomputeco/verde/pkg/storage"
)

// Server is the API server for asking questions and browsing stored exchanges
type Server struct {
	config Config
	driver storage.Driver
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected to allow sharing with the responder.
func NewServer(config Config, driver storage.Driver, logger *zap.Logger) (*Server, error) {
	if config.Responder == nil {
		return nil, errors.New("responder is required")
	}
	if driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		driver: driver,
		logger: logger,
		app:    app,
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Responder: config.Responder,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	app.Get("/", s.handleWidget)
	app.Get("/ping", s.handlePing)
	app.Post("/v1/ask", s.handleAsk)
	app.Get("/v1/exchanges", s.handleListExchanges)
	app.Get("/v1/exchanges/:hash", s.handleGetExchange)
	app.Get("/v1/similar", s.handleSimilar)
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	if m := config.Responder.Metrics(); m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}
