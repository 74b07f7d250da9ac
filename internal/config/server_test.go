package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServer(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadServer error: %v", err)
		}
		if cfg.ListenAddr != ":8080" {
			t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
	})

	t.Run("reads yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "devhealth.yaml")
		data := []byte("listen_addr: \":9090\"\nlog_level: debug\nlicense:\n  public_key: pubkey\n  license_key: lickey\n")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := LoadServer(path)
		if err != nil {
			t.Fatalf("LoadServer error: %v", err)
		}
		if cfg.ListenAddr != ":9090" {
			t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
		}
		if cfg.License.PublicKey != "pubkey" || cfg.License.LicenseKey != "lickey" {
			t.Errorf("License = %+v, want pubkey/lickey", cfg.License)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "devhealth.yaml")
		data := []byte("license:\n  public_key: filekey\n")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}

		t.Setenv("LICENSE_PUBLIC_KEY", "envkey")
		t.Setenv("LICENSE_KEY", "envlicense")

		cfg, err := LoadServer(path)
		if err != nil {
			t.Fatalf("LoadServer error: %v", err)
		}
		if cfg.License.PublicKey != "envkey" {
			t.Errorf("PublicKey = %q, want envkey", cfg.License.PublicKey)
		}
		if cfg.License.LicenseKey != "envlicense" {
			t.Errorf("LicenseKey = %q, want envlicense", cfg.License.LicenseKey)
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "devhealth.yaml")
		if err := os.WriteFile(path, []byte("listen_addr: [unterminated"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadServer(path); err == nil {
			t.Error("LoadServer accepted malformed yaml")
		}
	})
}

func TestResolveLicenseKey(t *testing.T) {
	t.Run("inline key wins", func(t *testing.T) {
		c := LicenseConfig{LicenseKey: "inline", LicenseKeyFile: "/does/not/exist"}
		key, err := c.ResolveLicenseKey()
		if err != nil {
			t.Fatalf("ResolveLicenseKey error: %v", err)
		}
		if key != "inline" {
			t.Errorf("key = %q, want inline", key)
		}
	})

	t.Run("falls back to file with whitespace trimmed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "license.key")
		if err := os.WriteFile(path, []byte("  filekey\n"), 0o600); err != nil {
			t.Fatalf("write key file: %v", err)
		}

		c := LicenseConfig{LicenseKeyFile: path}
		key, err := c.ResolveLicenseKey()
		if err != nil {
			t.Fatalf("ResolveLicenseKey error: %v", err)
		}
		if key != "filekey" {
			t.Errorf("key = %q, want filekey", key)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		var c LicenseConfig
		key, err := c.ResolveLicenseKey()
		if err != nil || key != "" {
			t.Errorf("ResolveLicenseKey = (%q, %v), want empty", key, err)
		}
	})

	t.Run("unreadable file is an error", func(t *testing.T) {
		c := LicenseConfig{LicenseKeyFile: filepath.Join(t.TempDir(), "missing.key")}
		if _, err := c.ResolveLicenseKey(); err == nil {
			t.Error("ResolveLicenseKey accepted a missing file")
		}
	})
}

func TestServerConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := DefaultServerConfig().Validate(); err != nil {
			t.Errorf("Validate error: %v", err)
		}
	})

	t.Run("empty listen addr", func(t *testing.T) {
		cfg := DefaultServerConfig()
		cfg.ListenAddr = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate accepted empty listen_addr")
		}
	})

	t.Run("license key without public key", func(t *testing.T) {
		cfg := DefaultServerConfig()
		cfg.License.LicenseKey = "somekey"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate accepted license key without public key")
		}
	})
}
