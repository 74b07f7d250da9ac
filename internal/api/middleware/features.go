package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/metrics"
)

// RequireFeature returns a Gin middleware that blocks requests when the
// user's organization is not entitled to the feature. Denials return
// 402 Payment Required with upgrade context, matching the entitlement
// query surface.
func RequireFeature(svc *entitlement.Service, feature string, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().
		Str("component", "feature_gate").
		Str("feature", feature).
		Logger()

	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		access, err := svc.CheckFeatureAccess(c.Request.Context(), user.OrgID, feature)
		if err != nil {
			log.Error().Err(err).Str("org_id", user.OrgID.String()).Msg("feature access check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check feature access"})
			return
		}

		if !access.Allowed {
			log.Debug().
				Str("org_id", user.OrgID.String()).
				Str("current_tier", string(access.CurrentTier)).
				Str("required_tier", string(access.RequiredTier)).
				Msg("feature access denied")
			metrics.FeatureDenials.WithLabelValues(feature).Inc()

			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":         "feature_not_licensed",
				"feature":       feature,
				"reason":        access.Reason,
				"current_tier":  string(access.CurrentTier),
				"required_tier": string(access.RequiredTier),
			})
			return
		}

		c.Next()
	}
}
