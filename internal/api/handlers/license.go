// Package handlers provides the HTTP handlers for the devhealth licensing
// API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/api/middleware"
	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/license"
)

// LicenseInfoResponse is the JSON response for the license info endpoint.
type LicenseInfoResponse struct {
	Licensed      bool            `json:"licensed"`
	Tier          string          `json:"tier"`
	InGracePeriod bool            `json:"in_grace_period"`
	OrgID         string          `json:"org_id,omitempty"`
	OrgName       string          `json:"org_name,omitempty"`
	ExpiresAt     int64           `json:"expires_at,omitempty"`
	IssuedAt      int64           `json:"issued_at,omitempty"`
	LicenseID     string          `json:"license_id,omitempty"`
	Features      map[string]bool `json:"features"`
	Limits        map[string]int  `json:"limits"`
}

// VerifyRequest is the JSON body for the license verify endpoint.
type VerifyRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

// LicenseHandler handles license and entitlement endpoints.
type LicenseHandler struct {
	logger   zerolog.Logger
	manager  *license.Manager
	service  *entitlement.Service
	verifier *license.Validator
}

// NewLicenseHandler creates a new LicenseHandler. The verifier may be nil
// when no public key is configured; the verify endpoint then returns 503.
func NewLicenseHandler(manager *license.Manager, service *entitlement.Service, verifier *license.Validator, logger zerolog.Logger) *LicenseHandler {
	return &LicenseHandler{
		logger:   logger.With().Str("component", "license_handler").Logger(),
		manager:  manager,
		service:  service,
		verifier: verifier,
	}
}

// RegisterRoutes registers license routes on the given router group.
func (h *LicenseHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/license", h.Get)
	r.POST("/license/verify", h.Verify)
	r.GET("/entitlements", h.Entitlements)
}

// Get returns the current process-wide license information.
func (h *LicenseHandler) Get(c *gin.Context) {
	resp := LicenseInfoResponse{
		Licensed:      h.manager.IsLicensed(),
		Tier:          string(h.manager.Tier()),
		InGracePeriod: h.manager.InGracePeriod(),
	}

	if p := h.manager.Payload(); p != nil {
		resp.OrgID = p.Sub
		resp.OrgName = p.OrgName
		resp.ExpiresAt = p.Exp
		resp.IssuedAt = p.Iat
		resp.LicenseID = p.LicenseID
		resp.Features = p.Features
		resp.Limits = p.Limits.AsMap()
	} else {
		resp.Features = license.DefaultFeatures(license.TierCommunity)
		resp.Limits = license.DefaultLimits(license.TierCommunity).AsMap()
	}

	c.JSON(http.StatusOK, resp)
}

// Verify validates a license key from the request body without installing
// it. Malformed or invalid keys still return 200 with the validation
// result attached; only transport-level problems are errors.
func (h *LicenseHandler) Verify(c *gin.Context) {
	if h.verifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no verification key configured"})
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "license_key is required"})
		return
	}

	result := h.verifier.Validate(req.LicenseKey)
	c.JSON(http.StatusOK, result)
}

// Entitlements returns the resolved entitlement snapshot for the
// authenticated user's organization.
func (h *LicenseHandler) Entitlements(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	snapshot, err := h.service.Snapshot(c.Request.Context(), user.OrgID)
	if err != nil {
		h.logger.Error().Err(err).Str("org_id", user.OrgID.String()).Msg("entitlement snapshot failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve entitlements"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
