package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/license"
)

// NewRateLimiter creates a Gin middleware enforcing a fixed rate limit.
// requests is the number of requests allowed per period.
// period is a duration string (e.g., "1m", "1h", "24h").
func NewRateLimiter(requests int64, period string) (gin.HandlerFunc, error) {
	duration, err := time.ParseDuration(period)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit period %q: %w", period, err)
	}

	rate := limiter.Rate{
		Period: duration,
		Limit:  requests,
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance), nil
}

// OrgRateLimiter enforces per-organization request rates driven by the
// resolved api_rate entitlement. Each distinct rate gets its own limiter
// instance over a shared in-memory store; the key combines org and rate so
// a tier change resets the window.
type OrgRateLimiter struct {
	svc    *entitlement.Service
	store  limiter.Store
	logger zerolog.Logger

	mu        sync.Mutex
	instances map[int]*limiter.Limiter
}

// NewOrgRateLimiter creates a per-organization rate limiter backed by the
// entitlement service.
func NewOrgRateLimiter(svc *entitlement.Service, logger zerolog.Logger) *OrgRateLimiter {
	return &OrgRateLimiter{
		svc:       svc,
		store:     memory.NewStore(),
		logger:    logger.With().Str("component", "org_rate_limiter").Logger(),
		instances: make(map[int]*limiter.Limiter),
	}
}

func (l *OrgRateLimiter) limiterFor(rate int) *limiter.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if inst, ok := l.instances[rate]; ok {
		return inst
	}
	inst := limiter.New(l.store, limiter.Rate{
		Period: time.Minute,
		Limit:  int64(rate),
	})
	l.instances[rate] = inst
	return inst
}

// Middleware returns the Gin handler. Requests without an authenticated
// user, and organizations whose api_rate resolves to unlimited or to no
// value at all, pass through unthrottled.
func (l *OrgRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.Next()
			return
		}

		rate, ok, err := l.svc.Limit(c.Request.Context(), user.OrgID, "api_rate")
		if err != nil {
			l.logger.Error().Err(err).Str("org_id", user.OrgID.String()).Msg("api_rate lookup failed")
			c.Next()
			return
		}
		if !ok || rate == license.Unlimited || rate <= 0 {
			c.Next()
			return
		}

		key := user.OrgID.String() + ":" + strconv.Itoa(rate)
		lctx, err := l.limiterFor(rate).Get(c.Request.Context(), key)
		if err != nil {
			l.logger.Error().Err(err).Str("org_id", user.OrgID.String()).Msg("rate limiter store error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			l.logger.Debug().
				Str("org_id", user.OrgID.String()).
				Int("rate", rate).
				Msg("org rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
