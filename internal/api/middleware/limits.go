package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/license"
	"github.com/fullchaos-studio/devhealth/internal/metrics"
)

// UsageCounter reports the current usage of a named resource for an
// organization. The surrounding platform supplies one per gated resource.
type UsageCounter func(ctx context.Context, orgID uuid.UUID) (int, error)

// RequireWithinLimit returns a Gin middleware that blocks requests once an
// organization's usage reaches its licensed limit. Denials return 402
// Payment Required with the limit context.
func RequireWithinLimit(svc *entitlement.Service, name string, counter UsageCounter, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().
		Str("component", "limit_gate").
		Str("limit", name).
		Logger()

	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		current, err := counter(c.Request.Context(), user.OrgID)
		if err != nil {
			log.Error().Err(err).Str("org_id", user.OrgID.String()).Msg("usage count failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check limit"})
			return
		}

		maximum, ok, err := svc.Limit(c.Request.Context(), user.OrgID, name)
		if err != nil {
			log.Error().Err(err).Str("org_id", user.OrgID.String()).Msg("limit lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check limit"})
			return
		}

		// Unknown limit names fail closed, the unlimited sentinel always
		// passes.
		within := ok && (maximum == license.Unlimited || current <= maximum)
		if !within {
			log.Debug().
				Str("org_id", user.OrgID.String()).
				Int("current", current).
				Int("maximum", maximum).
				Msg("limit exceeded")
			metrics.LimitExceeded.WithLabelValues(name).Inc()

			body := gin.H{
				"error":   "limit_exceeded",
				"limit":   name,
				"current": current,
			}
			if ok && maximum != license.Unlimited {
				body["maximum"] = maximum
			}
			c.AbortWithStatusJSON(http.StatusPaymentRequired, body)
			return
		}

		c.Next()
	}
}
