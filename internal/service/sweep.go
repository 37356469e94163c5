package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"netinventory/internal/adapter"
	"netinventory/internal/domain"
)

// SweepResult pairs the probe summary with the classification stats of a direct sweep
type SweepResult struct {
	Scan *domain.ScanResult `json:"scan" yaml:"scan"`
	Run  *domain.RunStats   `json:"run" yaml:"run"`
}

// SweepService probes a subnet and classifies SNMP-answering hosts straight into
// the asset registry, bypassing the staging store
type SweepService struct {
	prober     *adapter.Prober
	classifier *Classifier
	maxErrors  int
	log        zerolog.Logger
	clock      domain.Clock
	eventBus   *EventBus
}

// NewSweepService creates the service. The classifier is normally built with an
// IPRangeStrategy.
func NewSweepService(prober *adapter.Prober, classifier *Classifier, maxErrors int, log zerolog.Logger, clock domain.Clock, eventBus *EventBus) *SweepService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &SweepService{
		prober:     prober,
		classifier: classifier,
		maxErrors:  maxErrors,
		log:        log.With().Str("component", "sweep").Logger(),
		clock:      clock,
		eventBus:   eventBus,
	}
}

// SweepAndClassify sweeps cidr and classifies every host whose SNMP agent answered.
// Classification failures are listed in both the scan failures and the run stats.
func (s *SweepService) SweepAndClassify(ctx context.Context, cidr string) (*SweepResult, error) {
	stats := domain.NewRunStats(uuid.NewString(), s.classifier.Strategy().Name(), s.clock.Now())
	var mu sync.Mutex

	scan, err := s.prober.Sweep(ctx, cidr, func(ctx context.Context, rec *domain.DiscoveryRecord) error {
		if !rec.ProtocolAvailable {
			return nil
		}
		outcome := s.classifier.Classify(ctx, rec)

		mu.Lock()
		stats.Record(outcome, s.maxErrors)
		mu.Unlock()

		if outcome.Status == domain.OutcomeFailed {
			return errors.New(outcome.Error)
		}
		return nil
	})
	if scan == nil {
		return nil, err
	}
	stats.FinishedAt = s.clock.Now()

	s.log.Info().
		Str("scan_id", scan.ScanID).
		Str("run_id", stats.RunID).
		Int("classified", stats.Processed).
		Int("failed", stats.Failed).
		Msg("direct sweep complete")

	s.eventBus.Publish(Event{Type: EventScanCompleted, Payload: scan})
	s.eventBus.Publish(Event{Type: EventClassificationCompleted, Payload: stats})

	return &SweepResult{Scan: scan, Run: stats}, err
}

// ClassifyAddress probes one address and, when its SNMP agent answers, classifies
// it straight into the registry. The outcome is nil for hosts without SNMP.
func (s *SweepService) ClassifyAddress(ctx context.Context, ip string) (*domain.DiscoveryRecord, *domain.ClassificationOutcome, error) {
	ip, err := adapter.ParseIPv4(ip)
	if err != nil {
		return nil, nil, err
	}

	rec := s.prober.Probe(ctx, ip)
	if !rec.ProtocolAvailable {
		s.log.Info().Str("ip", ip).Bool("alive", rec.IsAlive).Msg("no SNMP answer, nothing to classify")
		return rec, nil, nil
	}

	outcome := s.classifier.Classify(ctx, rec)
	s.log.Info().
		Str("ip", ip).
		Str("status", string(outcome.Status)).
		Str("scenario", string(outcome.Scenario)).
		Msg("address classified")
	return rec, &outcome, nil
}
