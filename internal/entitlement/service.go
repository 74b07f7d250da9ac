package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/license"
	"github.com/fullchaos-studio/devhealth/internal/models"
)

// ErrOrgNotFound is returned when an organization does not exist.
var ErrOrgNotFound = errors.New("organization not found")

// OrgStore fetches the per-organization records the resolver consumes.
// The persistence layer of the surrounding platform implements it.
type OrgStore interface {
	GetOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	GetOrgLicense(ctx context.Context, orgID uuid.UUID) (*models.OrgLicense, error)
	GetFeatureOverrides(ctx context.Context, orgID uuid.UUID) ([]models.OrgFeatureOverride, error)
	GetLimitOverrides(ctx context.Context, orgID uuid.UUID) (map[string]int, error)
}

// Service combines the store, the license validator, and the resolver into
// the entitlement query surface consumed by API-layer authorization. The
// stored license is re-validated on every load; the store's cached
// is_valid flag is never trusted.
type Service struct {
	store     OrgStore
	validator *license.Validator
	resolver  *Resolver
	logger    zerolog.Logger
}

// NewService creates an entitlement service. The validator may be nil when
// no verification key is configured; orgs then resolve from tier defaults
// and overrides alone.
func NewService(store OrgStore, validator *license.Validator, resolver *Resolver, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		validator: validator,
		resolver:  resolver,
		logger:    logger.With().Str("component", "entitlement_service").Logger(),
	}
}

// OrgState loads and re-validates everything the resolver needs for one
// organization.
func (s *Service) OrgState(ctx context.Context, orgID uuid.UUID) (OrgState, error) {
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return OrgState{}, fmt.Errorf("get organization: %w", err)
	}

	st := OrgState{OrgID: orgID, Tier: org.Tier}

	rec, err := s.store.GetOrgLicense(ctx, orgID)
	if err != nil {
		return OrgState{}, fmt.Errorf("get org license: %w", err)
	}
	if rec != nil && rec.LicenseKey != "" && s.validator != nil {
		result := s.validator.Validate(rec.LicenseKey)
		if result.Valid {
			st.Payload = result.Payload
			st.InGracePeriod = result.InGracePeriod
			st.Tier = string(result.Payload.Tier)
		} else {
			s.logger.Warn().
				Str("org_id", orgID.String()).
				Str("error", result.Error).
				Msg("stored license failed validation")
		}
	}

	st.FeatureOverrides, err = s.store.GetFeatureOverrides(ctx, orgID)
	if err != nil {
		return OrgState{}, fmt.Errorf("get feature overrides: %w", err)
	}
	st.LimitOverrides, err = s.store.GetLimitOverrides(ctx, orgID)
	if err != nil {
		return OrgState{}, fmt.Errorf("get limit overrides: %w", err)
	}

	return st, nil
}

// Snapshot returns the full entitlement snapshot for an organization.
func (s *Service) Snapshot(ctx context.Context, orgID uuid.UUID) (Snapshot, error) {
	st, err := s.OrgState(ctx, orgID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.resolver.Snapshot(st, time.Now()), nil
}

// HasFeature answers a single feature query for an organization.
func (s *Service) HasFeature(ctx context.Context, orgID uuid.UUID, key string) (bool, error) {
	st, err := s.OrgState(ctx, orgID)
	if err != nil {
		return false, err
	}
	return s.resolver.HasFeature(st, key, time.Now()), nil
}

// CheckFeatureAccess answers a single feature query with denial context.
func (s *Service) CheckFeatureAccess(ctx context.Context, orgID uuid.UUID, key string) (FeatureAccess, error) {
	st, err := s.OrgState(ctx, orgID)
	if err != nil {
		return FeatureAccess{}, err
	}
	return s.resolver.CheckFeatureAccess(st, key, time.Now()), nil
}

// CheckLimit answers a single limit query for an organization.
func (s *Service) CheckLimit(ctx context.Context, orgID uuid.UUID, name string, current int) (bool, error) {
	st, err := s.OrgState(ctx, orgID)
	if err != nil {
		return false, err
	}
	return s.resolver.CheckLimit(st, name, current), nil
}

// Limit returns the resolved value of one limit for an organization.
func (s *Service) Limit(ctx context.Context, orgID uuid.UUID, name string) (int, bool, error) {
	st, err := s.OrgState(ctx, orgID)
	if err != nil {
		return 0, false, err
	}
	v, ok := s.resolver.Limit(st, name)
	return v, ok, nil
}
