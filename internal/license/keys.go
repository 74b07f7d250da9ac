package license

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// KeyPair holds an Ed25519 signing key pair. The private key is exported
// as its 32-byte seed, base64-encoded, for storage and transport.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// GenerateKeyPair generates a fresh Ed25519 key pair for signing licenses.
// This is the operator-facing trust root; key storage and rotation are the
// operator's responsibility.
func GenerateKeyPair() (*KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &KeyPair{
		PublicKey:  public,
		PrivateKey: private,
	}, nil
}

// PublicKeyBase64 encodes the public key for storage.
func (kp *KeyPair) PublicKeyBase64() string {
	return base64.StdEncoding.EncodeToString(kp.PublicKey)
}

// PrivateKeyBase64 encodes the 32-byte private key seed for storage.
func (kp *KeyPair) PrivateKeyBase64() string {
	return base64.StdEncoding.EncodeToString(kp.PrivateKey.Seed())
}

// PublicKeyFromBase64 decodes a base64-encoded Ed25519 public key.
func PublicKeyFromBase64(encoded string) (ed25519.PublicKey, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPublicKey, err)
	}
	if len(data) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return ed25519.PublicKey(data), nil
}

// PrivateKeyFromBase64 decodes a base64-encoded 32-byte private key seed.
func PrivateKeyFromBase64(encoded string) (ed25519.PrivateKey, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrivateKey, err)
	}
	if len(data) != ed25519.SeedSize {
		return nil, ErrInvalidPrivateKey
	}
	return ed25519.NewKeyFromSeed(data), nil
}
