package webserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/talkincode/storefront/config"
	"go.uber.org/zap"
)

// WebServer is the echo instance serving the api, the uploaded files and the
// operational endpoints.
type WebServer struct {
	root *echo.Echo
	api  *echo.Group
	addr string
}

var server *WebServer

type structValidator struct {
	validate *validator.Validate
}

func (v *structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Init builds the server from cfg and makes it the target of the Api* helpers
func Init(cfg *config.AppConfig) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.Validator = &structValidator{validate: validator.New()}

	// each server gets its own registry so tests can build many of them
	registry := prometheus.NewRegistry()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger())
	e.Use(middleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront",
		Registerer: registry,
	}))
	// room for multipart framing on top of the largest accepted upload
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.GetUploadMaxSize()+64*1024, 10)))

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.Static("/uploads", cfg.GetUploadDir())

	server = &WebServer{
		root: e,
		api:  e.Group("/api"),
		addr: cfg.Web.Host + ":" + strconv.Itoa(cfg.Web.Port),
	}
	return server
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("namespace", "http"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				zap.L().Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}

// Root exposes the echo instance, tests drive it through ServeHTTP
func (s *WebServer) Root() *echo.Echo {
	return s.root
}

func (s *WebServer) Addr() string {
	return s.addr
}

// Start blocks serving http until Shutdown is called
func (s *WebServer) Start() error {
	zap.L().Info("web server listening", zap.String("namespace", "http"), zap.String("addr", s.addr))
	if err := s.root.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server")
	}
	return nil
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

// Use adds middleware to the /api group
func Use(m ...echo.MiddlewareFunc) {
	server.api.Use(m...)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}
