package adapter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinventory/internal/domain"
	"netinventory/internal/logger"
)

var probeTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// fakePinger answers for a fixed set of addresses
type fakePinger struct {
	alive map[string]bool
	calls atomic.Int32
}

func (f *fakePinger) Ping(ctx context.Context, ip string) bool {
	f.calls.Add(1)
	return f.alive[ip]
}

// fakeQuerier returns canned system info
type fakeQuerier struct {
	info  map[string]domain.SystemInfo
	calls atomic.Int32
}

func (f *fakeQuerier) Query(ctx context.Context, ip string) (domain.SystemInfo, error) {
	f.calls.Add(1)
	info, ok := f.info[ip]
	if !ok {
		return domain.SystemInfo{}, ErrNoSNMPDataReturned
	}
	return info, nil
}

// memoryStore is an in-memory DiscoveryStore
type memoryStore struct {
	mu      sync.Mutex
	records map[string]domain.DiscoveryRecord
	fail    map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]domain.DiscoveryRecord), fail: make(map[string]bool)}
}

func (m *memoryStore) UpsertDiscovery(ctx context.Context, rec *domain.DiscoveryRecord, preserveProcessed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[rec.IPAddress] {
		return errors.New("disk full")
	}
	rec.Status = domain.DiscoveryPending
	m.records[rec.IPAddress] = *rec
	return nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingPublisher) PublishDiscoveryEvent(eventType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func newTestProber(pinger Pinger, querier Querier, store DiscoveryStore) *Prober {
	cfg := DefaultProberConfig()
	cfg.BatchPause = 0
	return NewProber(pinger, querier, store, cfg, logger.Nop(), domain.FixedClock{T: probeTime})
}

func TestDiscoverSingleIP(t *testing.T) {
	ctx := context.Background()

	t.Run("unreachable host skips SNMP", func(t *testing.T) {
		querier := &fakeQuerier{}
		store := newMemoryStore()
		p := newTestProber(&fakePinger{}, querier, store)

		rec, err := p.DiscoverSingleIP(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, rec.IsAlive)
		assert.False(t, rec.ProtocolAvailable)
		assert.Equal(t, domain.DiscoveryPending, rec.Status)
		assert.Zero(t, querier.calls.Load())
		assert.Contains(t, store.records, "10.0.0.1")
	})

	t.Run("reachable host with SNMP", func(t *testing.T) {
		info := domain.SystemInfo{Name: "sw-42", Location: "IT Department"}
		p := newTestProber(
			&fakePinger{alive: map[string]bool{"10.0.0.2": true}},
			&fakeQuerier{info: map[string]domain.SystemInfo{"10.0.0.2": info}},
			newMemoryStore(),
		)

		rec, err := p.DiscoverSingleIP(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, rec.IsAlive)
		assert.True(t, rec.ProtocolAvailable)
		assert.Equal(t, info, rec.System)
		assert.True(t, rec.DiscoveredAt.Equal(probeTime))
	})

	t.Run("SNMP failure is data, not an error", func(t *testing.T) {
		p := newTestProber(
			&fakePinger{alive: map[string]bool{"10.0.0.3": true}},
			&fakeQuerier{},
			newMemoryStore(),
		)

		rec, err := p.DiscoverSingleIP(ctx, "10.0.0.3")
		require.NoError(t, err)
		assert.True(t, rec.IsAlive)
		assert.False(t, rec.ProtocolAvailable)
	})

	t.Run("no querier means ping only", func(t *testing.T) {
		p := newTestProber(&fakePinger{alive: map[string]bool{"10.0.0.4": true}}, nil, newMemoryStore())

		rec, err := p.DiscoverSingleIP(ctx, "10.0.0.4")
		require.NoError(t, err)
		assert.True(t, rec.IsAlive)
		assert.False(t, rec.ProtocolAvailable)
	})

	t.Run("invalid address", func(t *testing.T) {
		p := newTestProber(&fakePinger{}, nil, newMemoryStore())
		_, err := p.DiscoverSingleIP(ctx, "10.0.0.256")
		assert.ErrorIs(t, err, domain.ErrInvalidIP)
	})
}

func TestDiscoverSubnet(t *testing.T) {
	ctx := context.Background()
	pinger := &fakePinger{alive: map[string]bool{
		"192.168.5.1":  true,
		"192.168.5.7":  true,
		"192.168.5.14": true,
	}}
	querier := &fakeQuerier{info: map[string]domain.SystemInfo{
		"192.168.5.1": {Name: "gw"},
		"192.168.5.7": {Name: "sw-1"},
	}}
	store := newMemoryStore()
	store.fail["192.168.5.9"] = true
	pub := &recordingPublisher{}

	p := newTestProber(pinger, querier, store)
	p.config.BatchSize = 4
	p.config.Workers = 2
	p.SetEventPublisher(pub)

	result, err := p.DiscoverSubnet(ctx, "192.168.5.0/28")
	require.NoError(t, err)

	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, "192.168.5.0/28", result.Target)
	assert.Equal(t, 14, result.TotalScanned)
	assert.Equal(t, 3, result.AliveCount)
	assert.Equal(t, 2, result.ProtocolCount)
	assert.False(t, result.Truncated)
	require.Len(t, result.Results, 14)
	assert.Equal(t, "192.168.5.1", result.Results[0].IPAddress)
	assert.Equal(t, "192.168.5.14", result.Results[13].IPAddress)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "192.168.5.9", result.Failures[0].Key)
	assert.Len(t, store.records, 13)

	assert.Equal(t, int32(14), pinger.calls.Load())
	assert.Equal(t, int32(3), querier.calls.Load())
	assert.Equal(t, []string{EventScanCompleted}, pub.events)
}

func TestSweepRejectsInvalidCIDRBeforeProbing(t *testing.T) {
	pinger := &fakePinger{}
	p := newTestProber(pinger, nil, newMemoryStore())

	result, err := p.Sweep(context.Background(), "10.0.0.0/31", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCIDR)
	assert.Nil(t, result)
	assert.Zero(t, pinger.calls.Load())
}

func TestSweepTruncates(t *testing.T) {
	p := newTestProber(&fakePinger{}, nil, newMemoryStore())
	p.config.MaxHosts = 20

	result, err := p.Sweep(context.Background(), "10.1.0.0/16", nil)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, 20, result.TotalScanned)
}

func TestSweepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var probed atomic.Int32

	pinger := PingerFunc(func(ctx context.Context, ip string) bool {
		if probed.Add(1) == 1 {
			cancel()
		}
		return false
	})
	p := newTestProber(pinger, nil, newMemoryStore())
	p.config.BatchSize = 2
	p.config.Workers = 1

	result, err := p.Sweep(ctx, "10.0.0.0/24", nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.TotalScanned, "the running batch completes")
}

func TestSweepPausesBetweenBatches(t *testing.T) {
	p := newTestProber(&fakePinger{}, nil, newMemoryStore())
	p.config.BatchSize = 1
	p.config.BatchPause = 20 * time.Millisecond

	start := time.Now()
	_, err := p.Sweep(context.Background(), "10.0.0.0/30", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSweepBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	pinger := PingerFunc(func(ctx context.Context, ip string) bool {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return true
	})

	p := newTestProber(pinger, nil, newMemoryStore())
	p.config.BatchSize = 10
	p.config.Workers = 3

	_, err := p.Sweep(context.Background(), "10.0.0.0/28", nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
