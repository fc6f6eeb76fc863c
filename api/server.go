// Package api exposes the employee service over HTTP with echo.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Pinger reports storage health. *db.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Echo *echo.Echo
	log  zerolog.Logger
}

// NewServer wires middlewares and routes. pinger may be nil.
func NewServer(svc EmployeeService, pinger Pinger, l zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{Echo: e, log: l}
	s.registerMiddlewares()
	s.registerRoutes(NewEmployeeHandler(svc), pinger)
	return s
}

func (s *Server) registerMiddlewares() {
	s.Echo.Use(middleware.RequestID())
	s.Echo.Use(s.contextLogger)
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = s.log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))
	s.Echo.Use(middleware.Recover())
}

// contextLogger puts a request scoped logger into the request context so
// the db log hook tags statements with the request id.
func (s *Server) contextLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		l := s.log.With().Str("request_id", rid).Logger()
		req := c.Request()
		c.SetRequest(req.WithContext(l.WithContext(req.Context())))
		return next(c)
	}
}

func (s *Server) registerRoutes(h *EmployeeHandler, pinger Pinger) {
	s.Echo.GET("/healthz", healthHandler(pinger))

	g := s.Echo.Group("/employees")
	g.POST("", h.CreateHandler)
	g.GET("", h.ListHandler)
	g.GET("/export", h.ExportHandler)
	g.POST("/import", h.ImportHandler)
	g.GET("/:id", h.GetHandler)
	g.PUT("/:id", h.UpdateHandler)
	g.DELETE("/:id", h.DeleteHandler)

	s.Echo.POST("/payroll/preview", h.PreviewHandler)
}

func healthHandler(pinger Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				return ResponseError(c, http.StatusServiceUnavailable, "Storage unavailable", err)
			}
		}
		return ResponseSuccess(c, http.StatusOK, "ok", nil)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- s.Echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("http server shutting down")
		return s.Echo.Shutdown(shutdownCtx)
	}
}
