package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"netinventory/internal/domain"
	"netinventory/internal/repository/sqlite"
)

// RetentionPolicy holds the maintenance windows
type RetentionPolicy struct {
	RecentWindow       time.Duration
	DiscoveryRetention time.Duration
	HistoryRetention   time.Duration
}

// DefaultRetentionPolicy is 24h recent, 7d discoveries, 90d history
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		RecentWindow:       24 * time.Hour,
		DiscoveryRetention: 7 * 24 * time.Hour,
		HistoryRetention:   90 * 24 * time.Hour,
	}
}

// MaintenanceService reports on and trims the staging store and status ledger
type MaintenanceService struct {
	repo     *sqlite.Repository
	policy   RetentionPolicy
	log      zerolog.Logger
	clock    domain.Clock
	eventBus *EventBus
}

// NewMaintenanceService creates the service. Zero windows take the defaults.
func NewMaintenanceService(repo *sqlite.Repository, policy RetentionPolicy, log zerolog.Logger, clock domain.Clock, eventBus *EventBus) *MaintenanceService {
	def := DefaultRetentionPolicy()
	if policy.RecentWindow <= 0 {
		policy.RecentWindow = def.RecentWindow
	}
	if policy.DiscoveryRetention <= 0 {
		policy.DiscoveryRetention = def.DiscoveryRetention
	}
	if policy.HistoryRetention <= 0 {
		policy.HistoryRetention = def.HistoryRetention
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &MaintenanceService{
		repo:     repo,
		policy:   policy,
		log:      log.With().Str("component", "maintenance").Logger(),
		clock:    clock,
		eventBus: eventBus,
	}
}

// Stats aggregates the staging store plus registry and ledger sizes
func (s *MaintenanceService) Stats(ctx context.Context) (domain.StagingStats, error) {
	stats, err := s.repo.DiscoveryStats(ctx, s.clock.Now().Add(-s.policy.RecentWindow))
	if err != nil {
		return stats, err
	}
	stats.RecentWindow = s.policy.RecentWindow

	if stats.Devices, err = s.repo.CountDevices(ctx); err != nil {
		return stats, err
	}
	if stats.HistoryEntries, err = s.repo.CountStatusHistory(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// Prune deletes discoveries and ledger entries older than their retention window
func (s *MaintenanceService) Prune(ctx context.Context) (domain.PruneResult, error) {
	now := s.clock.Now()
	result := domain.PruneResult{
		DiscoveryCutoff: now.Add(-s.policy.DiscoveryRetention),
		HistoryCutoff:   now.Add(-s.policy.HistoryRetention),
	}

	var err error
	if result.DiscoveriesRemoved, err = s.repo.PruneDiscoveries(ctx, result.DiscoveryCutoff); err != nil {
		return result, fmt.Errorf("prune discoveries: %w", err)
	}
	if result.HistoryRemoved, err = s.repo.PruneStatusHistory(ctx, result.HistoryCutoff); err != nil {
		return result, fmt.Errorf("prune status history: %w", err)
	}

	s.log.Info().
		Int64("discoveries", result.DiscoveriesRemoved).
		Int64("history", result.HistoryRemoved).
		Time("discovery_cutoff", result.DiscoveryCutoff).
		Time("history_cutoff", result.HistoryCutoff).
		Msg("retention prune complete")

	s.eventBus.Publish(Event{Type: EventPruneCompleted, Payload: result})
	return result, nil
}
