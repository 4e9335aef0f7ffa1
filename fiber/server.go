// Package fiber exposes crawling, status and question answering over HTTP,
// server-sent events and websockets.
package fiber

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

// ShutdownTimeout is the time given for in-flight requests to complete
// before the server is closed.
const ShutdownTimeout = 5 * time.Second

// HealthStatus is the body of the health check.
const HealthStatus = "system is healthy! :)"

// Server serves the doclens HTTP API.
type Server struct {
	ln  net.Listener
	app *fiber.App

	// Addr is the address to listen on, for example ":4001".
	Addr string

	Crawler  doclens.Crawler
	Ingester doclens.Ingester
	Searcher doclens.Searcher
	Answerer doclens.Answerer

	// MaxPages is the crawl size used when a request does not set one.
	// Non-positive values mean DefaultMaxPages.
	MaxPages int

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	Logger *slog.Logger
}

// Config holds the fiber settings of a Server.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

// NewServer returns a Server with its routes registered.
func NewServer(cfg Config) *Server {
	s := &Server{}
	s.app = fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleFiberError,
	})

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	s.app.Use(s.logRequests)

	s.app.Get("/", s.handleHealth)
	s.app.Get("/metrics", s.handleMetrics)

	api := s.app.Group("/api")
	api.Post("/crawl", s.handleCrawl)
	api.Get("/crawl/status", s.handleCrawlStatus)
	api.Delete("/crawl", s.handleDeleteDomain)
	api.Post("/ask", s.handleAsk)
	api.Use("/ask/ws", requireUpgrade)
	api.Get("/ask/ws", websocket.New(s.handleAskSocket))

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Open starts listening on Addr and serves in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.app.Listener(s.ln); err != nil {
			s.logger().Error("server stopped", "error", err)
		}
	}()
	s.logger().Info("server listening", "addr", s.ln.Addr().String())
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	return s.app.ShutdownWithTimeout(ShutdownTimeout)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": HealthStatus})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	if s.Metrics == nil {
		return fiber.ErrNotFound
	}
	return adaptor.HTTPHandler(s.Metrics)(c)
}

// logRequests logs every request after it completes.
func (s *Server) logRequests(c *fiber.Ctx) error {
	begin := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
	}
	s.logger().Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(begin),
	)
	return err
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
