package entitlement

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fullchaos-studio/devhealth/internal/models"
)

// StaticStore is an in-memory OrgStore for self-hosted single-org
// deployments and tests, where the org inventory comes from configuration
// rather than a database.
type StaticStore struct {
	mu               sync.RWMutex
	orgs             map[uuid.UUID]*models.Organization
	licenses         map[uuid.UUID]*models.OrgLicense
	featureOverrides map[uuid.UUID][]models.OrgFeatureOverride
	limitOverrides   map[uuid.UUID]map[string]int
}

// NewStaticStore creates an empty static store.
func NewStaticStore() *StaticStore {
	return &StaticStore{
		orgs:             make(map[uuid.UUID]*models.Organization),
		licenses:         make(map[uuid.UUID]*models.OrgLicense),
		featureOverrides: make(map[uuid.UUID][]models.OrgFeatureOverride),
		limitOverrides:   make(map[uuid.UUID]map[string]int),
	}
}

// PutOrganization registers or replaces an organization record.
func (s *StaticStore) PutOrganization(org *models.Organization) {
	s.mu.Lock()
	s.orgs[org.ID] = org
	s.mu.Unlock()
}

// PutOrgLicense registers or replaces an organization's license record.
func (s *StaticStore) PutOrgLicense(rec *models.OrgLicense) {
	s.mu.Lock()
	s.licenses[rec.OrgID] = rec
	s.mu.Unlock()
}

// PutFeatureOverrides replaces an organization's feature overrides.
func (s *StaticStore) PutFeatureOverrides(orgID uuid.UUID, overrides []models.OrgFeatureOverride) {
	s.mu.Lock()
	s.featureOverrides[orgID] = overrides
	s.mu.Unlock()
}

// PutLimitOverrides replaces an organization's limit overrides.
func (s *StaticStore) PutLimitOverrides(orgID uuid.UUID, overrides map[string]int) {
	s.mu.Lock()
	s.limitOverrides[orgID] = overrides
	s.mu.Unlock()
}

// GetOrganization implements OrgStore.
func (s *StaticStore) GetOrganization(_ context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[orgID]
	if !ok {
		return nil, ErrOrgNotFound
	}
	return org, nil
}

// GetOrgLicense implements OrgStore. A missing record is not an error; it
// means the org is unlicensed.
func (s *StaticStore) GetOrgLicense(_ context.Context, orgID uuid.UUID) (*models.OrgLicense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.licenses[orgID], nil
}

// GetFeatureOverrides implements OrgStore.
func (s *StaticStore) GetFeatureOverrides(_ context.Context, orgID uuid.UUID) ([]models.OrgFeatureOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.featureOverrides[orgID], nil
}

// GetLimitOverrides implements OrgStore.
func (s *StaticStore) GetLimitOverrides(_ context.Context, orgID uuid.UUID) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limitOverrides[orgID], nil
}
