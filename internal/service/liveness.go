package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"netinventory/internal/adapter"
	"netinventory/internal/domain"
	"netinventory/internal/repository/sqlite"
)

// LivenessService re-pings registered devices and maintains the status ledger
type LivenessService struct {
	repo     *sqlite.Repository
	pinger   adapter.Pinger
	workers  int
	log      zerolog.Logger
	clock    domain.Clock
	eventBus *EventBus
}

// NewLivenessService creates the service with a pool of workers for RecheckAll
func NewLivenessService(repo *sqlite.Repository, pinger adapter.Pinger, workers int, log zerolog.Logger, clock domain.Clock, eventBus *EventBus) *LivenessService {
	if workers < 1 {
		workers = 10
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &LivenessService{
		repo:     repo,
		pinger:   pinger,
		workers:  workers,
		log:      log.With().Str("component", "liveness").Logger(),
		clock:    clock,
		eventBus: eventBus,
	}
}

// Recheck pings dev and records the verdict. A ledger entry is written only when
// the device flips between online and offline.
func (s *LivenessService) Recheck(ctx context.Context, dev *domain.Device) (domain.LivenessResult, error) {
	alive := s.pinger.Ping(ctx, dev.IPAddress)
	now := s.clock.Now()

	changed, err := s.repo.RecordLiveness(ctx, dev.ID, alive, now)
	if err != nil {
		return domain.LivenessResult{}, fmt.Errorf("record liveness of %s: %w", dev.IPAddress, err)
	}

	result := domain.LivenessResult{
		DeviceID:  dev.ID,
		IPAddress: dev.IPAddress,
		IsAlive:   alive,
		Changed:   changed,
		Status:    domain.StatusFromAlive(alive),
		CheckedAt: now,
	}

	if changed {
		s.log.Info().
			Int64("device_id", dev.ID).
			Str("ip", dev.IPAddress).
			Str("status", string(result.Status)).
			Msg("device status changed")
		s.eventBus.Publish(Event{Type: EventDeviceStatusChanged, Payload: result})
	}
	return result, nil
}

// RecheckDevice loads a device by ID and re-checks it
func (s *LivenessService) RecheckDevice(ctx context.Context, deviceID int64) (domain.LivenessResult, error) {
	dev, err := s.repo.GetDevice(ctx, deviceID)
	if err != nil {
		return domain.LivenessResult{}, err
	}
	if dev == nil {
		return domain.LivenessResult{}, fmt.Errorf("device %d: %w", deviceID, domain.ErrNotFound)
	}
	return s.Recheck(ctx, dev)
}

// RecheckAll re-checks every registered device on the worker pool. Per-device
// failures are collected in the summary.
func (s *LivenessService) RecheckAll(ctx context.Context) (*domain.RecheckSummary, error) {
	devices, err := s.repo.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	summary := &domain.RecheckSummary{}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range devices {
		dev := &devices[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			result, err := s.Recheck(ctx, dev)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failures = append(summary.Failures, domain.ItemError{Key: dev.IPAddress, Message: err.Error()})
				return nil
			}
			summary.Checked++
			if result.IsAlive {
				summary.Online++
			} else {
				summary.Offline++
			}
			if result.Changed {
				summary.Changed++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info().
		Int("checked", summary.Checked).
		Int("online", summary.Online).
		Int("offline", summary.Offline).
		Int("changed", summary.Changed).
		Int("failures", len(summary.Failures)).
		Msg("liveness re-check complete")

	return summary, ctx.Err()
}

// History lists the status ledger of a device, newest first
func (s *LivenessService) History(ctx context.Context, deviceID int64) ([]domain.StatusHistoryEntry, error) {
	return s.repo.ListStatusHistory(ctx, deviceID)
}
