package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/abhigupta0507/NadiRakshak-Backend/config"
	v1 "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http/api/v1"
	internalhttp "github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http/internal"
	res "github.com/abhigupta0507/NadiRakshak-Backend/pkg/http"
	pkglog "github.com/abhigupta0507/NadiRakshak-Backend/pkg/log"
)

// HealthCheck is a named dependency ping served on /ready.
type HealthCheck = internalhttp.Check

type Router struct {
	cfg       *config.Config
	logger    pkglog.Logger
	apiRouter *v1.Router
	checks    []HealthCheck
}

func NewRouter(cfg *config.Config, logger pkglog.Logger, apiRouter *v1.Router, checks ...HealthCheck) *Router {
	return &Router{cfg: cfg, logger: logger, apiRouter: apiRouter, checks: checks}
}

func (r *Router) Setup(e *echo.Echo) {
	e.HideBanner = true
	e.Validator = res.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     r.cfg.CORSOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ev := r.logger.Info()
			if v.Error != nil {
				ev = r.logger.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("trace_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))

	internalhttp.Register(e.Group(""), r.checks...)
	apiGroup := e.Group(r.cfg.HTTPBasePath)
	r.apiRouter.Register(apiGroup)
}
