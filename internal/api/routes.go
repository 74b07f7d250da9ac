// Package api provides the HTTP API for the devhealth licensing server.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/api/handlers"
	"github.com/fullchaos-studio/devhealth/internal/api/middleware"
	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/license"
)

// Config holds configuration for the API router.
type Config struct {
	// RateLimitRequests is the global request budget per period, applied
	// before the per-organization entitlement limiter. Zero disables it.
	RateLimitRequests int64
	// RateLimitPeriod is the duration string for the global limiter
	// (e.g. "1m", "1h").
	RateLimitPeriod string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RateLimitRequests: 300,
		RateLimitPeriod:   "1m",
	}
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router with the given dependencies. The
// entitlement service drives per-organization rate limiting and the
// entitlements endpoint; the manager serves process-wide license queries.
func NewRouter(
	cfg Config,
	manager *license.Manager,
	service *entitlement.Service,
	verifier *license.Validator,
	logger zerolog.Logger,
) (*Router, error) {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))

	if cfg.RateLimitRequests > 0 {
		rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitPeriod)
		if err != nil {
			return nil, err
		}
		r.Engine.Use(rateLimiter)
	}

	r.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := r.Engine.Group("/api/v1")
	apiV1.Use(middleware.NewOrgRateLimiter(service, logger).Middleware())

	licenseHandler := handlers.NewLicenseHandler(manager, service, verifier, logger)
	licenseHandler.RegisterRoutes(apiV1)

	r.logger.Info().Msg("API router initialized")
	return r, nil
}
