package license

import (
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

// SignOptions describes a license to be issued. Only OrgID, Tier, and
// DurationDays are required; everything else falls back to the tier's
// defaults.
type SignOptions struct {
	OrgID        string
	Tier         string
	DurationDays int

	OrgName      string
	ContactEmail string
	LicenseID    string

	// Features, Limits, and GraceDays override the tier defaults when set.
	Features  map[string]bool
	Limits    *Limits
	GraceDays *int

	// IssuedAt pins the issuance timestamp (unix seconds) for deterministic
	// output. Zero means now.
	IssuedAt int64
}

// SignLicense creates and signs a license key for an organization.
// Input validation happens before any cryptographic work: an unknown tier
// yields *InvalidTierError and a non-positive duration yields
// ErrInvalidDuration.
func SignLicense(privateKeyB64 string, opts SignOptions) (string, error) {
	tier, err := ParseTier(opts.Tier)
	if err != nil {
		return "", err
	}
	if opts.DurationDays <= 0 {
		return "", ErrInvalidDuration
	}

	issuedAt := opts.IssuedAt
	if issuedAt == 0 {
		issuedAt = time.Now().Unix()
	}

	features := opts.Features
	if features == nil {
		features = DefaultFeatures(tier)
	}
	limits := DefaultLimits(tier)
	if opts.Limits != nil {
		limits = *opts.Limits
	}
	graceDays := GraceDays(tier)
	if opts.GraceDays != nil {
		graceDays = *opts.GraceDays
	}
	licenseID := opts.LicenseID
	if licenseID == "" {
		licenseID = uuid.New().String()
	}

	payload := Payload{
		Iss:          Issuer,
		Sub:          opts.OrgID,
		Iat:          issuedAt,
		Exp:          issuedAt + int64(opts.DurationDays)*86400,
		Tier:         tier,
		Features:     features,
		Limits:       limits,
		GraceDays:    graceDays,
		OrgName:      opts.OrgName,
		ContactEmail: opts.ContactEmail,
		LicenseID:    licenseID,
	}

	return SignPayload(privateKeyB64, &payload)
}

// SignPayload signs a pre-built payload and returns the license string in
// the form base64(payload).base64(signature). The signature covers exactly
// the bytes produced by Encode; any later mutation invalidates it.
func SignPayload(privateKeyB64 string, payload *Payload) (string, error) {
	privateKey, err := PrivateKeyFromBase64(privateKeyB64)
	if err != nil {
		return "", err
	}

	payloadBytes, err := Encode(payload)
	if err != nil {
		return "", err
	}
	signature := ed25519.Sign(privateKey, payloadBytes)

	return base64.StdEncoding.EncodeToString(payloadBytes) + "." +
		base64.StdEncoding.EncodeToString(signature), nil
}
