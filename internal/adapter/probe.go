package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"netinventory/internal/domain"
)

// EventScanCompleted is published after every subnet scan
const EventScanCompleted = "scan-completed"

// ProberConfig tunes batched subnet probing
type ProberConfig struct {
	BatchSize         int
	Workers           int
	BatchPause        time.Duration
	MaxHosts          int
	PreserveProcessed bool
}

// DefaultProberConfig returns batches of 10 on 10 workers, capped at 254 hosts
func DefaultProberConfig() ProberConfig {
	return ProberConfig{
		BatchSize:  10,
		Workers:    10,
		BatchPause: 100 * time.Millisecond,
		MaxHosts:   254,
	}
}

// ProbeHandler receives every probed record during a sweep. An error is recorded
// as a per-address failure and does not stop the sweep.
type ProbeHandler func(ctx context.Context, rec *domain.DiscoveryRecord) error

// Prober probes single addresses and CIDR blocks
type Prober struct {
	pinger    Pinger
	querier   Querier
	store     DiscoveryStore
	config    ProberConfig
	log       zerolog.Logger
	clock     domain.Clock
	publisher EventPublisher
	mu        sync.Mutex
	scanning  bool
}

// NewProber creates a prober. A nil querier limits discovery to ping.
func NewProber(pinger Pinger, querier Querier, store DiscoveryStore, config ProberConfig, log zerolog.Logger, clock domain.Clock) *Prober {
	def := DefaultProberConfig()
	if config.BatchSize < 1 {
		config.BatchSize = def.BatchSize
	}
	if config.Workers < 1 {
		config.Workers = def.Workers
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Prober{
		pinger:  pinger,
		querier: querier,
		store:   store,
		config:  config,
		log:     log.With().Str("component", "prober").Logger(),
		clock:   clock,
	}
}

// SetEventPublisher sets the event publisher for scan events
func (p *Prober) SetEventPublisher(pub EventPublisher) {
	p.publisher = pub
}

func (p *Prober) publish(eventType string, payload interface{}) {
	if p.publisher != nil {
		p.publisher.PublishDiscoveryEvent(eventType, payload)
	}
}

// Probe pings ip and, when it answers, queries its system group. Failures are
// recorded on the returned record and never surface as errors.
func (p *Prober) Probe(ctx context.Context, ip string) *domain.DiscoveryRecord {
	rec := domain.NewDiscoveryRecord(ip, p.clock.Now())

	if !p.pinger.Ping(ctx, ip) {
		rec.MarkUnreachable()
		return rec
	}
	rec.IsAlive = true

	if p.querier == nil {
		return rec
	}

	info, err := p.querier.Query(ctx, ip)
	if err != nil {
		p.log.Debug().Err(err).Str("ip", ip).Msg("SNMP query failed")
		return rec
	}
	rec.ProtocolAvailable = true
	rec.System = info
	return rec
}

// DiscoverSingleIP probes one address and stages the result
func (p *Prober) DiscoverSingleIP(ctx context.Context, ip string) (*domain.DiscoveryRecord, error) {
	ip, err := ParseIPv4(ip)
	if err != nil {
		return nil, err
	}

	rec := p.Probe(ctx, ip)
	if err := p.store.UpsertDiscovery(ctx, rec, p.config.PreserveProcessed); err != nil {
		return nil, err
	}

	p.log.Info().
		Str("ip", ip).
		Bool("alive", rec.IsAlive).
		Bool("protocol", rec.ProtocolAvailable).
		Msg("address probed")
	return rec, nil
}

// DiscoverSubnet probes every host of cidr and stages each result
func (p *Prober) DiscoverSubnet(ctx context.Context, cidr string) (*domain.ScanResult, error) {
	result, err := p.Sweep(ctx, cidr, func(ctx context.Context, rec *domain.DiscoveryRecord) error {
		return p.store.UpsertDiscovery(ctx, rec, p.config.PreserveProcessed)
	})
	if result != nil {
		p.publish(EventScanCompleted, result)
	}
	return result, err
}

// Sweep expands cidr and probes it batch by batch, handing each record to handler.
// An invalid block fails before any probe is sent. Cancellation stops the sweep
// after the running batch and returns the partial result with ctx.Err().
func (p *Prober) Sweep(ctx context.Context, cidr string, handler ProbeHandler) (*domain.ScanResult, error) {
	hosts, truncated, err := ExpandCIDR(cidr, p.config.MaxHosts)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.scanning {
		p.mu.Unlock()
		return nil, fmt.Errorf("scan already in progress")
	}
	p.scanning = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.scanning = false
		p.mu.Unlock()
	}()

	result := &domain.ScanResult{
		ScanID:    uuid.NewString(),
		Target:    cidr,
		Truncated: truncated,
		Results:   make([]domain.ProbeResult, 0, len(hosts)),
		StartedAt: p.clock.Now(),
	}

	log := p.log.With().Str("scan_id", result.ScanID).Str("target", cidr).Logger()
	if truncated {
		log.Warn().Int("max_hosts", p.config.MaxHosts).Msg("target larger than host cap, scan truncated")
	}
	log.Info().Int("hosts", len(hosts)).Int("batch_size", p.config.BatchSize).Msg("subnet scan started")

	var sweepErr error
	for start := 0; start < len(hosts); start += p.config.BatchSize {
		if err := ctx.Err(); err != nil {
			sweepErr = err
			break
		}

		end := min(start+p.config.BatchSize, len(hosts))
		p.probeBatch(ctx, hosts[start:end], handler, result)

		if end < len(hosts) && p.config.BatchPause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.config.BatchPause):
			}
		}
	}

	result.TotalScanned = len(result.Results)
	for _, r := range result.Results {
		if r.IsAlive {
			result.AliveCount++
		}
		if r.ProtocolAvailable {
			result.ProtocolCount++
		}
	}
	result.FinishedAt = p.clock.Now()

	log.Info().
		Int("scanned", result.TotalScanned).
		Int("alive", result.AliveCount).
		Int("protocol", result.ProtocolCount).
		Int("failures", len(result.Failures)).
		Msg("subnet scan complete")

	return result, sweepErr
}

// probeBatch runs one batch on the worker pool and appends results in address order
func (p *Prober) probeBatch(ctx context.Context, batch []string, handler ProbeHandler, result *domain.ScanResult) {
	results := make([]domain.ProbeResult, len(batch))
	var (
		mu       sync.Mutex
		failures []domain.ItemError
	)

	var g errgroup.Group
	g.SetLimit(p.config.Workers)
	for i, ip := range batch {
		g.Go(func() error {
			rec := p.Probe(ctx, ip)
			r := domain.ProbeResult{
				IPAddress:         ip,
				IsAlive:           rec.IsAlive,
				ProtocolAvailable: rec.ProtocolAvailable,
			}
			if handler != nil {
				if err := handler(ctx, rec); err != nil {
					r.Error = err.Error()
					mu.Lock()
					failures = append(failures, domain.ItemError{Key: ip, Message: err.Error()})
					mu.Unlock()
				}
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	result.Results = append(result.Results, results...)
	result.Failures = append(result.Failures, failures...)
}
