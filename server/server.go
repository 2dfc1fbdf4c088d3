// Package server mounts the GraphQL handler on the configured web framework.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/kcmvp/crm/app"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	EngineGin   = "gin"
	EngineEcho  = "echo"
	EngineFiber = "fiber"

	HealthPath = "/healthz"
)

var health = map[string]string{"status": "ok"}

// Server serves the GraphQL endpoint and a liveness probe. gin and echo run on net/http;
// fiber runs on its own fasthttp server.
type Server struct {
	engine string
	addr   string
	logger *slog.Logger
	http   *http.Server
	fiber  *fiber.App
}

// New builds the router of cfg.Engine with graphql mounted at cfg.Path.
func New(cfg app.Server, graphql http.Handler, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := RequestLog(logger)(graphql)
	s := &Server{engine: cfg.Engine, addr: cfg.Addr, logger: logger}
	switch cfg.Engine {
	case EngineGin, "":
		s.engine = EngineGin
		s.http = &http.Server{Handler: ginRouter(cfg.Path, h)}
	case EngineEcho:
		s.http = &http.Server{Handler: echoRouter(cfg.Path, h)}
	case EngineFiber:
		s.fiber = fiberApp(cfg.Path, h)
	default:
		return nil, fmt.Errorf("unsupported server engine %q", cfg.Engine)
	}
	return s, nil
}

func ginRouter(path string, h http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Any(path, gin.WrapH(h))
	router.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, health)
	})
	return router
}

func echoRouter(path string, h http.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Any(path, echo.WrapHandler(h))
	e.GET(HealthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, health)
	})
	return e
}

func fiberApp(path string, h http.Handler) *fiber.App {
	f := fiber.New()
	f.Use(fiberrecover.New())
	f.All(path, adaptor.HTTPHandler(h))
	f.Get(HealthPath, func(c fiber.Ctx) error {
		return c.JSON(health)
	})
	return f
}

func (s *Server) Engine() string { return s.engine }

// Handler exposes the router as a net/http handler.
func (s *Server) Handler() http.Handler {
	if s.fiber != nil {
		return adaptor.FiberApp(s.fiber)
	}
	return s.http.Handler
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("server started", "engine", s.engine, "addr", ln.Addr().String())
	if s.fiber != nil {
		return s.fiber.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.logger.Info("server stopped", "engine", s.engine)
	if s.fiber != nil {
		return s.fiber.ShutdownWithContext(ctx)
	}
	return s.http.Shutdown(ctx)
}
