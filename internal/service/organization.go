package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"netinventory/internal/config"
	"netinventory/internal/domain"
	"netinventory/internal/repository/sqlite"
)

// SyncResult counts the catalog rows written by a sync
type SyncResult struct {
	Departments int `json:"departments" yaml:"departments"`
	Units       int `json:"units" yaml:"units"`
	IPRanges    int `json:"ip_ranges" yaml:"ip_ranges"`
}

// OrganizationService loads the department/unit catalog into the database
type OrganizationService struct {
	repo *sqlite.Repository
	log  zerolog.Logger
}

// NewOrganizationService creates the service
func NewOrganizationService(repo *sqlite.Repository, log zerolog.Logger) *OrganizationService {
	return &OrganizationService{
		repo: repo,
		log:  log.With().Str("component", "organization").Logger(),
	}
}

// Sync upserts every configured department (by name), unit (by department and
// name) and IP range (by CIDR). Rows missing from the config are left in place
// since devices may still reference them.
func (s *OrganizationService) Sync(ctx context.Context, org config.OrganizationConfig) (SyncResult, error) {
	var result SyncResult

	for _, dc := range org.Departments {
		dept := &domain.Department{Name: dc.Name, Description: dc.Description}
		if err := s.repo.UpsertDepartment(ctx, dept); err != nil {
			return result, err
		}
		if dept.IsSentinel {
			return result, fmt.Errorf("department %q collides with the sentinel department", dc.Name)
		}
		result.Departments++

		for _, uc := range dc.Units {
			unit := &domain.Unit{
				Name:         uc.Name,
				Description:  uc.Description,
				DepartmentID: dept.ID,
				Keywords:     domain.JoinKeywords(uc.Keywords),
			}
			if err := s.repo.UpsertUnit(ctx, unit); err != nil {
				return result, err
			}
			if unit.IsSentinel {
				return result, fmt.Errorf("unit %q of %q collides with the sentinel unit", uc.Name, dc.Name)
			}
			result.Units++
		}

		for _, cidr := range dc.IPRanges {
			ipr := &domain.IPRange{CIDR: cidr, DepartmentID: dept.ID, Description: dc.Name}
			if err := s.repo.UpsertIPRange(ctx, ipr); err != nil {
				return result, err
			}
			result.IPRanges++
		}
	}

	s.log.Info().
		Int("departments", result.Departments).
		Int("units", result.Units).
		Int("ip_ranges", result.IPRanges).
		Msg("organization catalog synced")
	return result, nil
}
