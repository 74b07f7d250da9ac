// Package main is the entrypoint for licensectl, the license issuance and
// inspection CLI.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fullchaos-studio/devhealth/internal/license"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "licensectl",
		Short:        "Issue, verify, and inspect devhealth license keys",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newKeygenCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newInspectCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("licensectl %s\n", Version)
			fmt.Printf("  Commit:     %s\n", Commit)
			fmt.Printf("  Built:      %s\n", BuildDate)
			fmt.Printf("  Go version: %s\n", runtime.Version())
		},
	}
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new Ed25519 signing key pair",
		Long: `Generate a new Ed25519 signing key pair.

The private key signs licenses and must be kept offline. The public key
ships with the product as the verification trust root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := license.GenerateKeyPair()
			if err != nil {
				return err
			}
			fmt.Printf("Private key: %s\n", kp.PrivateKeyBase64())
			fmt.Printf("Public key:  %s\n", kp.PublicKeyBase64())
			return nil
		},
	}
}

// resolvePrivateKey returns the signing key from --key or --key-file.
func resolvePrivateKey(key, keyFile string) (string, error) {
	if key != "" {
		return key, nil
	}
	if keyFile == "" {
		return "", fmt.Errorf("one of --key or --key-file is required")
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseLimitFlags turns repeated name=value pairs into a Limits record on
// top of the tier defaults.
func parseLimitFlags(tier string, pairs []string) (*license.Limits, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	t, err := license.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	limits := license.DefaultLimits(t)
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid limit %q: expected name=value", pair)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid limit %q: %w", pair, err)
		}
		switch name {
		case "users":
			limits.Users = n
		case "repos":
			limits.Repos = n
		case "api_rate":
			limits.APIRate = n
		default:
			return nil, fmt.Errorf("unknown limit name %q", name)
		}
	}
	return &limits, nil
}

// parseFeatureFlags turns repeated key or key=false pairs into a feature
// map on top of the tier defaults.
func parseFeatureFlags(tier string, pairs []string) (map[string]bool, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	t, err := license.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	features := license.DefaultFeatures(t)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			features[key] = true
			continue
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid feature %q: %w", pair, err)
		}
		features[key] = enabled
	}
	return features, nil
}

func newSignCmd() *cobra.Command {
	var (
		key       string
		keyFile   string
		orgID     string
		tier      string
		days      int
		orgName   string
		email     string
		graceDays int
		issuedAt  int64
		features  []string
		limits    []string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a new license key for an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			privateKey, err := resolvePrivateKey(key, keyFile)
			if err != nil {
				return err
			}

			opts := license.SignOptions{
				OrgID:        orgID,
				Tier:         tier,
				DurationDays: days,
				OrgName:      orgName,
				ContactEmail: email,
				IssuedAt:     issuedAt,
			}
			if cmd.Flags().Changed("grace-days") {
				opts.GraceDays = &graceDays
			}
			if opts.Features, err = parseFeatureFlags(tier, features); err != nil {
				return err
			}
			if opts.Limits, err = parseLimitFlags(tier, limits); err != nil {
				return err
			}

			licenseKey, err := license.SignLicense(privateKey, opts)
			if err != nil {
				return err
			}
			fmt.Println(licenseKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "base64-encoded Ed25519 private key")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "file containing the base64-encoded private key")
	cmd.Flags().StringVar(&orgID, "org", "", "organization identifier (required)")
	cmd.Flags().StringVar(&tier, "tier", string(license.TierCommunity), "license tier (community, team, enterprise)")
	cmd.Flags().IntVar(&days, "days", 365, "license duration in days")
	cmd.Flags().StringVar(&orgName, "org-name", "", "organization display name")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().IntVar(&graceDays, "grace-days", 0, "grace period in days (default: tier default)")
	cmd.Flags().Int64Var(&issuedAt, "issued-at", 0, "issuance time as unix seconds (default: now)")
	cmd.Flags().StringArrayVar(&features, "feature", nil, "feature override as key or key=false (repeatable)")
	cmd.Flags().StringArrayVar(&limits, "limit", nil, "limit override as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

// readLicenseKey returns the license key from the argument or stdin.
func readLicenseKey(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read license key from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// printResult writes a validation result as indented JSON.
func printResult(result license.ValidationResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newVerifyCmd() *cobra.Command {
	var (
		publicKey string
		at        int64
	)

	cmd := &cobra.Command{
		Use:   "verify [license-key]",
		Short: "Verify a license key against a public key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			licenseKey, err := readLicenseKey(args)
			if err != nil {
				return err
			}
			validator, err := license.NewValidator(publicKey)
			if err != nil {
				return err
			}

			var result license.ValidationResult
			if at != 0 {
				result = validator.ValidateAt(licenseKey, at)
			} else {
				result = validator.Validate(licenseKey)
			}
			if err := printResult(result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("license is not valid: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&publicKey, "public-key", "", "base64-encoded Ed25519 public key (required)")
	cmd.Flags().Int64Var(&at, "at", 0, "evaluate expiry at this unix time instead of now")
	_ = cmd.MarkFlagRequired("public-key")

	return cmd
}

func newInspectCmd() *cobra.Command {
	var publicKey string

	cmd := &cobra.Command{
		Use:   "inspect [license-key]",
		Short: "Show a license's payload without enforcing expiry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			licenseKey, err := readLicenseKey(args)
			if err != nil {
				return err
			}
			validator, err := license.NewValidator(publicKey)
			if err != nil {
				return err
			}
			return printResult(validator.Inspect(licenseKey))
		},
	}

	cmd.Flags().StringVar(&publicKey, "public-key", "", "base64-encoded Ed25519 public key (required)")
	_ = cmd.MarkFlagRequired("public-key")

	return cmd
}
