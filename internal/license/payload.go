package license

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Issuer identifies the signing authority. Every payload carries it and
// validation rejects payloads issued by anyone else.
const Issuer = "fullchaos.studio"

// Payload is the signed unit of truth inside a license key.
//
// Field order matters: Encode serializes fields in declaration order and
// the signature covers those exact bytes.
type Payload struct {
	Iss          string          `json:"iss" validate:"required,eq=fullchaos.studio"`
	Sub          string          `json:"sub" validate:"required"`
	Iat          int64           `json:"iat" validate:"required"`
	Exp          int64           `json:"exp" validate:"required,gtfield=Iat"`
	Tier         Tier            `json:"tier" validate:"required,oneof=community team enterprise"`
	Features     map[string]bool `json:"features"`
	Limits       Limits          `json:"limits"`
	GraceDays    int             `json:"grace_days" validate:"gte=0"`
	OrgName      string          `json:"org_name,omitempty"`
	ContactEmail string          `json:"contact_email,omitempty"`
	LicenseID    string          `json:"license_id,omitempty"`
}

// payloadValidate holds the schema rules for decoded payloads.
var payloadValidate = validator.New()

// HardCutoff returns the unix timestamp after which the license is
// unconditionally invalid: expiry plus the grace window.
func (p *Payload) HardCutoff() int64 {
	return p.Exp + int64(p.GraceDays)*86400
}

// HasFeature reports whether the payload enables the named feature.
// Absent keys default to false.
func (p *Payload) HasFeature(feature string) bool {
	return p.Features[feature]
}

// CheckLimit reports whether current is within the payload's named limit.
// Unknown limit names fail closed; a stored -1 means unlimited.
func (p *Payload) CheckLimit(name string, current int) bool {
	limit, ok := p.Limits.Get(name)
	if !ok {
		return false
	}
	if limit == Unlimited {
		return true
	}
	return current <= limit
}

// Encode serializes the payload to the canonical byte representation used
// for signing. Field ordering is stable across calls.
func Encode(p *Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// Decode parses and schema-validates payload bytes. Malformed JSON yields
// ErrMalformedPayload; a schema violation yields a *SchemaError. Decode
// never panics on untrusted input.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}
	if err := validatePayload(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// validatePayload applies the payload schema to an already-parsed payload.
func validatePayload(p *Payload) error {
	if p.Features == nil {
		return &SchemaError{Details: "features is required"}
	}
	if p.Limits.Users < Unlimited || p.Limits.Repos < Unlimited || p.Limits.APIRate < Unlimited {
		return &SchemaError{Details: "limit values must be -1 or non-negative"}
	}
	if err := payloadValidate.Struct(p); err != nil {
		return &SchemaError{Details: err.Error()}
	}
	return nil
}
