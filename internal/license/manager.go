package license

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/metrics"
)

// Manager holds the process-wide license for self-hosted deployments.
// It re-validates on demand and answers tier, feature, and limit queries,
// falling back to community defaults when no valid license is set.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	validator  *Validator
	licenseKey string
	result     *ValidationResult
	logger     zerolog.Logger
}

// NewManager creates a manager from a base64-encoded public key. An empty
// key yields a manager with no validator: it answers every query from the
// community defaults and rejects any license that is set.
func NewManager(publicKeyB64 string, logger zerolog.Logger) (*Manager, error) {
	m := &Manager{
		logger: logger.With().Str("component", "license_manager").Logger(),
	}
	if publicKeyB64 == "" {
		m.logger.Warn().Msg("no verification key configured, running unlicensed")
		return m, nil
	}
	validator, err := NewValidator(publicKeyB64)
	if err != nil {
		return nil, err
	}
	m.validator = validator
	return m, nil
}

// NewManagerFromEnv creates a manager from the LICENSE_PUBLIC_KEY
// environment variable and, when LICENSE_KEY is also set, loads that
// license immediately.
func NewManagerFromEnv(logger zerolog.Logger) (*Manager, error) {
	m, err := NewManager(os.Getenv("LICENSE_PUBLIC_KEY"), logger)
	if err != nil {
		return nil, err
	}
	if key := os.Getenv("LICENSE_KEY"); key != "" {
		m.SetLicense(key)
	}
	return m, nil
}

// SetLicense validates and installs a license key, replacing any previous
// one. The result is returned whether or not the key validated; an invalid
// key leaves the manager unlicensed.
func (m *Manager) SetLicense(licenseKey string) ValidationResult {
	if m.validator == nil {
		result := ValidationResult{Error: "No verification key configured"}
		m.auditValidation(licenseKey, result)
		return result
	}
	result := m.validator.Validate(licenseKey)

	m.mu.Lock()
	m.licenseKey = licenseKey
	m.result = &result
	m.mu.Unlock()

	m.auditValidation(licenseKey, result)
	return result
}

// Revalidate re-runs validation of the installed license against the
// current clock. Licenses cross expiry boundaries while the process runs,
// so long-lived callers should not cache the first result forever.
func (m *Manager) Revalidate() ValidationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.validator == nil || m.licenseKey == "" {
		return ValidationResult{Error: "No license configured"}
	}
	result := m.validator.Validate(m.licenseKey)
	m.result = &result
	return result
}

// IsLicensed reports whether a valid license is installed.
func (m *Manager) IsLicensed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result != nil && m.result.Valid
}

// InGracePeriod reports whether the installed license is in its grace
// window.
func (m *Manager) InGracePeriod() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result != nil && m.result.InGracePeriod
}

// Tier returns the licensed tier, or community when unlicensed.
func (m *Manager) Tier() Tier {
	if p := m.Payload(); p != nil {
		return p.Tier
	}
	return TierCommunity
}

// Payload returns the validated payload, or nil when unlicensed.
func (m *Manager) Payload() *Payload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil || !m.result.Valid {
		return nil
	}
	return m.result.Payload
}

// HasFeature reports whether the current license (or the community
// defaults) enables the named feature. Denials are logged for compliance
// evidence.
func (m *Manager) HasFeature(feature string) bool {
	var enabled bool
	if p := m.Payload(); p != nil {
		enabled = p.HasFeature(feature)
	} else {
		enabled = DefaultFeatures(TierCommunity)[feature]
	}

	if !enabled {
		m.logger.Warn().
			Str("action", "feature_access_denied").
			Str("feature", feature).
			Str("current_tier", string(m.Tier())).
			Msg("feature access denied")
		metrics.FeatureDenials.WithLabelValues(feature).Inc()
	}
	return enabled
}

// CheckLimit reports whether current is within the named limit of the
// current license (or the community defaults). Unknown limit names fail
// closed.
func (m *Manager) CheckLimit(name string, current int) bool {
	limit, ok := m.Limit(name)
	if !ok {
		m.logger.Warn().Str("limit", name).Msg("unknown limit name")
		return false
	}
	if limit == Unlimited {
		return true
	}
	within := current <= limit
	if !within {
		m.logger.Warn().
			Str("action", "limit_exceeded").
			Str("limit", name).
			Int("current", current).
			Int("maximum", limit).
			Str("current_tier", string(m.Tier())).
			Msg("limit exceeded")
		metrics.LimitExceeded.WithLabelValues(name).Inc()
	}
	return within
}

// Limit returns the named limit of the current license, or the community
// default when unlicensed. The second return is false for unknown names.
func (m *Manager) Limit(name string) (int, bool) {
	if p := m.Payload(); p != nil {
		return p.Limits.Get(name)
	}
	return DefaultLimits(TierCommunity).Get(name)
}

// auditValidation emits the structured audit events for a validation.
func (m *Manager) auditValidation(licenseKey string, result ValidationResult) {
	licenseID := licenseKey
	if len(licenseID) > 16 {
		licenseID = licenseID[:16] + "..."
	}
	if p := result.Payload; p != nil && p.LicenseID != "" {
		licenseID = p.LicenseID
	}

	metrics.LicenseValidations.WithLabelValues(
		metrics.ValidationOutcome(result.Valid, result.InGracePeriod, result.Error)).Inc()

	if !result.Valid {
		m.logger.Warn().
			Str("action", "license_validation_failed").
			Str("license_id", licenseID).
			Str("error", result.Error).
			Msg("license validation failed")
		return
	}

	evt := m.logger.Info().
		Str("action", "license_validated").
		Str("license_id", licenseID).
		Str("tier", string(result.Payload.Tier)).
		Str("org_id", result.Payload.Sub).
		Bool("in_grace_period", result.InGracePeriod)
	evt.Msg("license validated")

	if result.InGracePeriod {
		m.logger.Warn().
			Str("action", "license_grace_period_entered").
			Str("license_id", licenseID).
			Str("tier", string(result.Payload.Tier)).
			Msg("license entered grace period")
	}
}
