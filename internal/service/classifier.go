package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"netinventory/internal/domain"
	"netinventory/internal/repository/sqlite"
)

// Placement is the resolved position of a device in the organization
type Placement struct {
	Department *domain.Department
	Unit       *domain.Unit
	UserName   string
	Scenario   domain.Scenario
}

// Classifier resolves department, unit and user for discoveries and upserts the
// result into the asset registry
type Classifier struct {
	repo      *sqlite.Repository
	strategy  Strategy
	maxErrors int
	log       zerolog.Logger
	clock     domain.Clock
	eventBus  *EventBus
	running   sync.Mutex
}

// NewClassifier creates a classifier. maxErrors bounds the error messages kept in
// RunStats.
func NewClassifier(repo *sqlite.Repository, strategy Strategy, maxErrors int, log zerolog.Logger, clock domain.Clock, eventBus *EventBus) *Classifier {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Classifier{
		repo:      repo,
		strategy:  strategy,
		maxErrors: maxErrors,
		log:       log.With().Str("component", "classifier").Str("strategy", strategy.Name()).Logger(),
		clock:     clock,
		eventBus:  eventBus,
	}
}

// Strategy returns the placement strategy in use
func (c *Classifier) Strategy() Strategy {
	return c.strategy
}

// Resolve computes the placement of rec without writing a device. Sentinel
// fallbacks are applied; the only fatal condition is a missing sentinel
// department.
func (c *Classifier) Resolve(ctx context.Context, rec *domain.DiscoveryRecord) (*Placement, error) {
	sentinel, err := c.repo.UnknownDepartment(ctx)
	if err != nil {
		return nil, err
	}

	dept, err := c.strategy.Department(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("resolve department: %w", err)
	}
	if dept == nil {
		dept = sentinel
	}

	unit, err := c.strategy.Unit(ctx, rec, dept)
	if err != nil {
		return nil, fmt.Errorf("resolve unit: %w", err)
	}
	if unit == nil {
		if unit, err = c.repo.EnsureUnknownUnit(ctx, dept.ID); err != nil {
			return nil, fmt.Errorf("resolve unit: %w", err)
		}
	}

	user := CleanContact(rec.System.Contact)

	return &Placement{
		Department: dept,
		Unit:       unit,
		UserName:   user,
		Scenario: domain.ScenarioFor(
			!dept.IsSentinel,
			!unit.IsSentinel,
			user != domain.UnknownUser,
		),
	}, nil
}

// Classify places one discovery and upserts its device. Failures, including
// panics inside a strategy, are reported in the outcome rather than returned.
func (c *Classifier) Classify(ctx context.Context, rec *domain.DiscoveryRecord) (outcome domain.ClassificationOutcome) {
	outcome = domain.ClassificationOutcome{IPAddress: rec.IPAddress}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = domain.OutcomeFailed
			outcome.Error = fmt.Sprintf("classification panicked: %v", r)
			c.log.Error().Str("ip", rec.IPAddress).Interface("panic", r).Msg("classification panicked")
		}
	}()

	placement, err := c.Resolve(ctx, rec)
	if err != nil {
		return c.failed(outcome, err)
	}

	dev := domain.DeviceFromDiscovery(rec)
	dev.DepartmentID = placement.Department.ID
	dev.UnitID = placement.Unit.ID
	dev.UserName = placement.UserName

	created, err := c.repo.UpsertDevice(ctx, dev)
	if err != nil {
		return c.failed(outcome, err)
	}

	outcome.Status = domain.OutcomeProcessed
	outcome.Scenario = placement.Scenario
	outcome.DeviceID = dev.ID
	outcome.Created = created
	outcome.DepartmentID = dev.DepartmentID
	outcome.UnitID = dev.UnitID
	outcome.UserName = dev.UserName

	c.log.Debug().
		Str("ip", rec.IPAddress).
		Int64("device_id", dev.ID).
		Str("department", placement.Department.Name).
		Str("unit", placement.Unit.Name).
		Str("user", placement.UserName).
		Str("scenario", string(placement.Scenario)).
		Bool("created", created).
		Msg("discovery classified")
	return outcome
}

func (c *Classifier) failed(outcome domain.ClassificationOutcome, err error) domain.ClassificationOutcome {
	outcome.Status = domain.OutcomeFailed
	outcome.Error = err.Error()

	if errors.Is(err, domain.ErrSentinelMissing) {
		c.log.Error().Str("kind", "sentinel").Str("ip", outcome.IPAddress).Err(err).
			Msg("sentinel department missing, cannot classify")
	} else {
		c.log.Warn().Str("ip", outcome.IPAddress).Err(err).Msg("classification failed")
	}
	return outcome
}

// ProcessAutoAssignment classifies every pending discovery, marking each processed
// or failed. One record failing never stops the run. An error is returned only
// when another run holds the lock, pending records cannot be loaded, or ctx is
// cancelled (with the stats gathered so far).
func (c *Classifier) ProcessAutoAssignment(ctx context.Context) (*domain.RunStats, error) {
	if !c.running.TryLock() {
		return nil, domain.ErrClassifierBusy
	}
	defer c.running.Unlock()

	pending, err := c.repo.ListPendingDiscoveries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending discoveries: %w", err)
	}

	stats := domain.NewRunStats(uuid.NewString(), c.strategy.Name(), c.clock.Now())
	log := c.log.With().Str("run_id", stats.RunID).Logger()
	log.Info().Int("pending", len(pending)).Msg("classification run started")

	var runErr error
	for i := range pending {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		rec := &pending[i]
		outcome := c.Classify(ctx, rec)

		if outcome.Status == domain.OutcomeProcessed {
			if err := c.repo.MarkDiscoveryProcessed(ctx, rec.IPAddress); err != nil {
				outcome.Status = domain.OutcomeFailed
				outcome.Error = fmt.Sprintf("mark processed: %v", err)
			}
		}
		if outcome.Status == domain.OutcomeFailed {
			if err := c.repo.MarkDiscoveryFailed(ctx, rec.IPAddress, outcome.Error); err != nil {
				log.Warn().Err(err).Str("ip", rec.IPAddress).Msg("failed to record classification failure")
			}
		}

		stats.Record(outcome, c.maxErrors)
	}

	stats.FinishedAt = c.clock.Now()

	log.Info().
		Int("processed", stats.Processed).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("failed", stats.Failed).
		Msg("classification run complete")

	c.eventBus.Publish(Event{Type: EventClassificationCompleted, Payload: stats})

	return stats, runErr
}

// RetryFailed moves failed discoveries back to pending for the next run
func (c *Classifier) RetryFailed(ctx context.Context) (int64, error) {
	n, err := c.repo.ResetFailedDiscoveries(ctx)
	if err != nil {
		return 0, err
	}
	c.log.Info().Int64("reset", n).Msg("failed discoveries returned to pending")
	return n, nil
}
