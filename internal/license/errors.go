package license

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPublicKey indicates the verification key is malformed.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidPrivateKey indicates the signing key is malformed.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrInvalidDuration indicates a non-positive license duration.
	ErrInvalidDuration = errors.New("duration_days must be positive")
	// ErrLicenseExpired indicates the license is past its grace period.
	ErrLicenseExpired = errors.New("license expired (past grace period)")
	// ErrMalformedPayload indicates payload bytes that are not valid JSON.
	ErrMalformedPayload = errors.New("invalid JSON in payload")
)

// InvalidTierError is returned when a tier string is not one of the
// enumerated values.
type InvalidTierError struct {
	Tier string
}

func (e *InvalidTierError) Error() string {
	valid := make([]string, 0, len(ValidTiers()))
	for _, t := range ValidTiers() {
		valid = append(valid, string(t))
	}
	return fmt.Sprintf("invalid tier %q, must be one of: %s", e.Tier, strings.Join(valid, ", "))
}

// SchemaError is returned by the codec when a payload decodes as JSON but
// violates the payload schema.
type SchemaError struct {
	Details string
}

func (e *SchemaError) Error() string {
	return "invalid payload schema: " + e.Details
}
