// Package main is the entrypoint for the devhealth licensing server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/api"
	"github.com/fullchaos-studio/devhealth/internal/config"
	"github.com/fullchaos-studio/devhealth/internal/entitlement"
	"github.com/fullchaos-studio/devhealth/internal/license"
	"github.com/fullchaos-studio/devhealth/internal/models"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "devhealth.yaml", "path to configuration file")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", Version).Logger()
	if os.Getenv("ENV") != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
		return 1
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	logger.Info().Str("listen_addr", cfg.ListenAddr).Msg("Starting devhealth server")

	manager, err := license.NewManager(cfg.License.PublicKey, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize license manager")
		return 1
	}

	licenseKey, err := cfg.License.ResolveLicenseKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read license key")
		return 1
	}
	if licenseKey != "" {
		result := manager.SetLicense(licenseKey)
		if !result.Valid {
			logger.Warn().Str("error", result.Error).Msg("Configured license is not valid, running unlicensed")
		}
	} else {
		logger.Info().Msg("No license key configured, running as community tier")
	}

	var verifier *license.Validator
	if cfg.License.PublicKey != "" {
		verifier, err = license.NewValidator(cfg.License.PublicKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize license validator")
			return 1
		}
	}

	store := entitlement.NewStaticStore()
	seedStore(store, manager, licenseKey, logger)

	resolver := entitlement.NewResolver(entitlement.StandardCatalog(), logger)
	service := entitlement.NewService(store, verifier, resolver, logger)

	router, err := api.NewRouter(api.DefaultConfig(), manager, service, verifier, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build API router")
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server error")
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		return 1
	}

	logger.Info().Msg("Server stopped")
	return 0
}

// seedStore registers the self-hosted deployment's own organization so the
// entitlement endpoints resolve against the installed license.
func seedStore(store *entitlement.StaticStore, manager *license.Manager, licenseKey string, logger zerolog.Logger) {
	p := manager.Payload()
	if p == nil {
		return
	}

	orgID, err := uuid.Parse(p.Sub)
	if err != nil {
		logger.Warn().Str("sub", p.Sub).Msg("License subject is not a UUID, skipping org registration")
		return
	}

	store.PutOrganization(&models.Organization{
		ID:   orgID,
		Name: p.OrgName,
		Tier: string(p.Tier),
	})
	store.PutOrgLicense(&models.OrgLicense{
		OrgID:      orgID,
		LicenseKey: licenseKey,
		Tier:       string(p.Tier),
	})

	logger.Info().
		Str("org_id", orgID.String()).
		Str("tier", string(p.Tier)).
		Msg("Registered licensed organization")
}
