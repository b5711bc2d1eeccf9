// Package server exposes the codec registry over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/birdayz/transcode/pkg/codec"
)

const (
	bodyLimit       = "1M"
	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP front end of the dispatcher.
type Server struct {
	echo    *echo.Echo
	logger  *zap.Logger
	metrics *metrics
}

// JSON is a generic JSON object.
type JSON map[string]any

// SchemeInfo describes one registered scheme.
type SchemeInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ErrorBody is returned for every failed codec operation.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response is returned for every successful codec operation.
type Response struct {
	codec.Result
	Display string `json:"display"`
}

// New builds a server with its own metrics registry.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		echo:    echo.New(),
		logger:  logger,
		metrics: newMetrics(reg),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, JSON{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := e.Group("/v1")
	v1.GET("/schemes", s.listSchemes)
	v1.POST("/:direction/:scheme", s.transcode)

	return s
}

// Handler returns the server as a plain http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errc <- s.echo.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) listSchemes(c echo.Context) error {
	schemes := codec.Schemes()
	out := make([]SchemeInfo, 0, len(schemes))
	for _, sc := range schemes {
		out = append(out, SchemeInfo{ID: sc.String(), Label: sc.Label()})
	}
	return c.JSON(http.StatusOK, JSON{
		"schemes": out,
		"count":   len(out),
	})
}

func (s *Server) transcode(c echo.Context) error {
	scheme, direction := c.Param("scheme"), c.Param("direction")

	data, err := readData(c.Request())
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{Kind: codec.InvalidInput.String(), Message: err.Error()})
	}

	start := time.Now()
	res, err := codec.Run(data, scheme, direction)
	s.metrics.observe(scheme, direction, time.Since(start), err)
	if err != nil {
		kind := codec.KindOf(err)
		if kind == 0 {
			kind = codec.InvalidInput
		}
		return c.JSON(statusFor(kind), ErrorBody{Kind: kind.String(), Message: err.Error()})
	}

	return c.JSON(http.StatusOK, Response{Result: res, Display: res.String()})
}

// readData takes the "data" field of a JSON body, or the raw body for any
// other content type.
func readData(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))
	if mt != echo.MIMEApplicationJSON {
		return string(body), nil
	}

	if !gjson.ValidBytes(body) {
		return "", errors.New("request body is not valid JSON")
	}
	v := gjson.GetBytes(body, "data")
	if v.Type != gjson.String {
		return "", errors.New(`request body must contain a string "data" field`)
	}
	return v.String(), nil
}

func statusFor(k codec.Kind) int {
	if k == codec.UnknownScheme {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
