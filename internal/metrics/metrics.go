// Package metrics exposes Prometheus instrumentation for the licensing
// subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LicenseValidations counts validation calls by outcome
	// (valid, grace, expired, invalid).
	LicenseValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devhealth",
		Subsystem: "license",
		Name:      "validations_total",
		Help:      "License validation attempts by outcome.",
	}, []string{"outcome"})

	// FeatureDenials counts gating denials by feature key.
	FeatureDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devhealth",
		Subsystem: "license",
		Name:      "feature_denials_total",
		Help:      "Feature access denials by feature key.",
	}, []string{"feature"})

	// LimitExceeded counts limit-check failures by limit name.
	LimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devhealth",
		Subsystem: "license",
		Name:      "limit_exceeded_total",
		Help:      "Limit checks that exceeded the licensed maximum.",
	}, []string{"limit"})
)

// ValidationOutcome maps a validation result to a metric label.
func ValidationOutcome(valid, inGrace bool, errMsg string) string {
	switch {
	case valid && inGrace:
		return "grace"
	case valid:
		return "valid"
	case errMsg == "License expired (past grace period)":
		return "expired"
	default:
		return "invalid"
	}
}
