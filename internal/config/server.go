// Package config provides configuration management for the devhealth
// server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LicenseConfig holds the licensing trust root and, for self-hosted
// deployments, the license key itself.
type LicenseConfig struct {
	PublicKey      string `yaml:"public_key,omitempty"`
	LicenseKey     string `yaml:"license_key,omitempty"`
	LicenseKeyFile string `yaml:"license_key_file,omitempty"`
}

// ServerConfig holds the server's configuration.
type ServerConfig struct {
	ListenAddr string        `yaml:"listen_addr,omitempty"`
	LogLevel   string        `yaml:"log_level,omitempty"`
	License    LicenseConfig `yaml:"license,omitempty"`
}

// DefaultServerConfig returns the configuration defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr: ":8080",
		LogLevel:   "info",
	}
}

// LoadServer reads the configuration from the given path. If the file does
// not exist, defaults are returned. LICENSE_PUBLIC_KEY and LICENSE_KEY
// environment variables take precedence over the file.
func LoadServer(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("LICENSE_PUBLIC_KEY"); v != "" {
		cfg.License.PublicKey = v
	}
	if v := os.Getenv("LICENSE_KEY"); v != "" {
		cfg.License.LicenseKey = v
	}

	return cfg, nil
}

// ResolveLicenseKey returns the configured license key, reading
// license_key_file when license_key itself is unset.
func (c *LicenseConfig) ResolveLicenseKey() (string, error) {
	if c.LicenseKey != "" {
		return c.LicenseKey, nil
	}
	if c.LicenseKeyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.LicenseKeyFile)
	if err != nil {
		return "", fmt.Errorf("read license key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Validate checks that the configuration is usable.
func (c *ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.License.LicenseKey != "" && c.License.PublicKey == "" {
		return errors.New("license.public_key is required when a license key is configured")
	}
	return nil
}
