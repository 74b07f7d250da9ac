package license

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// timeStatus classifies a payload against a point in time.
type timeStatus int

const (
	statusValid timeStatus = iota
	statusGrace
	statusExpired
)

// ValidationResult is the outcome of a single validation call. Failures are
// data, not errors: every malformed or tampered input maps to Valid=false
// with a distinguishable Error string. The parsed payload is attached even
// for expired licenses so callers can display diagnostics.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Payload       *Payload `json:"payload,omitempty"`
	Error         string   `json:"error,omitempty"`
	InGracePeriod bool     `json:"in_grace_period"`
}

// Validator verifies license keys against a single Ed25519 public key.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	publicKey ed25519.PublicKey
}

// NewValidator creates a validator from a base64-encoded public key.
// A malformed key is a deployment defect and fails construction
// immediately rather than on first use.
func NewValidator(publicKeyB64 string) (*Validator, error) {
	publicKey, err := PublicKeyFromBase64(publicKeyB64)
	if err != nil {
		return nil, err
	}
	return &Validator{publicKey: publicKey}, nil
}

// Validate verifies and parses a license key, enforcing expiry against the
// current wall clock.
func (v *Validator) Validate(licenseKey string) ValidationResult {
	return v.validate(licenseKey, time.Now().Unix(), true)
}

// ValidateAt is Validate with an explicit current time in unix seconds,
// for deterministic evaluation.
func (v *Validator) ValidateAt(licenseKey string, currentTime int64) ValidationResult {
	return v.validate(licenseKey, currentTime, true)
}

// Inspect verifies and parses a license key without enforcing expiry.
// Inspection tooling uses this to display expired licenses.
func (v *Validator) Inspect(licenseKey string) ValidationResult {
	return v.validate(licenseKey, time.Now().Unix(), false)
}

func (v *Validator) validate(licenseKey string, currentTime int64, checkExpiry bool) ValidationResult {
	parts := strings.Split(strings.TrimSpace(licenseKey), ".")
	if len(parts) != 2 {
		return ValidationResult{Error: "Invalid license format: expected <payload>.<signature>"}
	}

	payloadBytes, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return ValidationResult{Error: "Invalid base64 encoding"}
	}
	signature, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return ValidationResult{Error: "Invalid base64 encoding"}
	}

	// The signature check runs before any interpretation of the payload
	// bytes so crafted payloads never reach the schema or expiry logic.
	if !ed25519.Verify(v.publicKey, payloadBytes, signature) {
		return ValidationResult{Error: "Invalid signature"}
	}

	payload, err := Decode(payloadBytes)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return ValidationResult{Error: "Invalid payload schema: " + schemaErr.Details}
		}
		return ValidationResult{Error: "Invalid JSON in payload"}
	}

	if checkExpiry {
		switch classify(payload, currentTime) {
		case statusExpired:
			return ValidationResult{
				Payload: payload,
				Error:   "License expired (past grace period)",
			}
		case statusGrace:
			return ValidationResult{
				Valid:         true,
				Payload:       payload,
				InGracePeriod: true,
			}
		}
	}

	return ValidationResult{Valid: true, Payload: payload}
}

// classify runs the three-way time classification: valid up to and
// including the expiry instant, grace until the hard cutoff, expired after.
func classify(p *Payload, currentTime int64) timeStatus {
	if currentTime <= p.Exp {
		return statusValid
	}
	if currentTime <= p.HardCutoff() {
		return statusGrace
	}
	return statusExpired
}

// IsExpired reports whether the payload is past its grace period at the
// given time.
func IsExpired(p *Payload, currentTime int64) bool {
	return classify(p, currentTime) == statusExpired
}

// InGracePeriod reports whether the payload is past expiry but inside its
// grace window at the given time.
func InGracePeriod(p *Payload, currentTime int64) bool {
	return classify(p, currentTime) == statusGrace
}
