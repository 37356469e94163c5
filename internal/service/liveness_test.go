package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinventory/internal/domain"
	"netinventory/internal/logger"
	"netinventory/internal/repository/sqlite"
)

// registerDevices classifies one discovery per address so the registry has rows to re-check
func registerDevices(t *testing.T, repo *sqlite.Repository, ips ...string) []int64 {
	t.Helper()
	c := newKeywordClassifier(repo, nil)
	ids := make([]int64, 0, len(ips))
	for _, ip := range ips {
		o := c.Classify(context.Background(), discovery(ip, "IT", "sw-"+ip, ""))
		require.Equal(t, domain.OutcomeProcessed, o.Status, o.Error)
		ids = append(ids, o.DeviceID)
	}
	return ids
}

func TestRecheckRecordsTransitions(t *testing.T) {
	repo := newTestRepo(t)
	bus := NewEventBus()
	events := make(chan Event, 10)
	bus.Subscribe(events)
	pinger := newScriptedPinger()
	svc := NewLivenessService(repo, pinger, 2, logger.Nop(), domain.FixedClock{T: testNow}, bus)
	ctx := context.Background()

	id := registerDevices(t, repo, "10.0.0.1")[0]

	pinger.set("10.0.0.1", true)
	result, err := svc.RecheckDevice(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.IsAlive)
	assert.False(t, result.Changed, "device was registered alive")
	assert.Equal(t, domain.DeviceOnline, result.Status)
	assert.Empty(t, collect(events))

	pinger.set("10.0.0.1", false)
	result, err = svc.RecheckDevice(ctx, id)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, domain.DeviceOffline, result.Status)

	got := collect(events)
	require.Len(t, got, 1)
	assert.Equal(t, EventDeviceStatusChanged, got[0].Type)
	payload, ok := got[0].Payload.(domain.LivenessResult)
	require.True(t, ok)
	assert.Equal(t, id, payload.DeviceID)

	result, err = svc.RecheckDevice(ctx, id)
	require.NoError(t, err)
	assert.False(t, result.Changed)

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.DeviceOffline, history[0].Status)
	assert.True(t, history[0].ChangedAt.Equal(testNow))

	dev, err := repo.GetDevice(ctx, id)
	require.NoError(t, err)
	assert.False(t, dev.IsAlive)
}

func TestRecheckDeviceMissing(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLivenessService(repo, newScriptedPinger(), 1, logger.Nop(), nil, nil)

	_, err := svc.RecheckDevice(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecheckAll(t *testing.T) {
	repo := newTestRepo(t)
	pinger := newScriptedPinger()
	svc := NewLivenessService(repo, pinger, 3, logger.Nop(), domain.FixedClock{T: testNow}, nil)
	ctx := context.Background()

	registerDevices(t, repo, "10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4")
	pinger.set("10.0.0.1", true)
	pinger.set("10.0.0.3", true)

	summary, err := svc.RecheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Checked)
	assert.Equal(t, 2, summary.Online)
	assert.Equal(t, 2, summary.Offline)
	assert.Equal(t, 2, summary.Changed)
	assert.Empty(t, summary.Failures)

	n, err := repo.CountStatusHistory(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.RecheckAll(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
