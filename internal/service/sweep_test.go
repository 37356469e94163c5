package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinventory/internal/adapter"
	"netinventory/internal/config"
	"netinventory/internal/domain"
	"netinventory/internal/logger"
)

// tableQuerier answers SNMP queries from a fixed table
type tableQuerier map[string]domain.SystemInfo

func (q tableQuerier) Query(ctx context.Context, ip string) (domain.SystemInfo, error) {
	info, ok := q[ip]
	if !ok {
		return domain.SystemInfo{}, errors.New("request timeout")
	}
	return info, nil
}

func TestSweepAndClassify(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := NewOrganizationService(repo, logger.Nop()).Sync(ctx, config.OrganizationConfig{
		Departments: []config.DepartmentConfig{
			{Name: "Lab", IPRanges: []string{"10.30.0.0/24"}, Units: []config.UnitConfig{
				{Name: "Lab Switches", Keywords: []string{"switch"}},
			}},
		},
	})
	require.NoError(t, err)

	pinger := adapter.PingerFunc(func(ctx context.Context, ip string) bool {
		return ip == "10.30.0.1" || ip == "10.30.0.2"
	})
	querier := tableQuerier{
		"10.30.0.1": {Description: "Aruba switch 2930F", Name: "lab-sw1", Contact: "Owner: Lab Team"},
	}

	clock := domain.FixedClock{T: testNow}
	prober := adapter.NewProber(pinger, querier, repo, adapter.ProberConfig{BatchSize: 4, Workers: 2, MaxHosts: 254}, logger.Nop(), clock)
	classifier := NewClassifier(repo, NewIPRangeStrategy(repo, nil), 10, logger.Nop(), clock, nil)

	bus := NewEventBus()
	events := make(chan Event, 4)
	bus.Subscribe(events)
	svc := NewSweepService(prober, classifier, 10, logger.Nop(), clock, bus)

	result, err := svc.SweepAndClassify(ctx, "10.30.0.0/29")
	require.NoError(t, err)

	assert.Equal(t, 6, result.Scan.TotalScanned)
	assert.Equal(t, 2, result.Scan.AliveCount)
	assert.Equal(t, 1, result.Scan.ProtocolCount)
	assert.Equal(t, 1, result.Run.Processed)
	assert.Equal(t, 1, result.Run.Created)
	assert.Equal(t, 1, result.Run.Scenarios[domain.ScenarioAllFound])

	dev, err := repo.GetDeviceByIP(ctx, "10.30.0.1")
	require.NoError(t, err)
	require.NotNil(t, dev)
	assert.Equal(t, "Lab Team", dev.UserName)
	assert.Equal(t, departmentByName(t, repo, "Lab").ID, dev.DepartmentID)

	dev, err = repo.GetDeviceByIP(ctx, "10.30.0.2")
	require.NoError(t, err)
	assert.Nil(t, dev, "hosts without SNMP are not registered")

	staged, err := repo.ListPendingDiscoveries(ctx)
	require.NoError(t, err)
	assert.Empty(t, staged, "direct sweeps bypass staging")

	got := collect(events)
	require.Len(t, got, 2)
	assert.Equal(t, EventScanCompleted, got[0].Type)
	assert.Equal(t, EventClassificationCompleted, got[1].Type)
}

func TestSweepAndClassifyInvalidCIDR(t *testing.T) {
	repo := newTestRepo(t)
	var pinged bool
	pinger := adapter.PingerFunc(func(ctx context.Context, ip string) bool {
		pinged = true
		return true
	})
	prober := adapter.NewProber(pinger, nil, repo, adapter.DefaultProberConfig(), logger.Nop(), nil)
	classifier := NewClassifier(repo, NewIPRangeStrategy(repo, nil), 10, logger.Nop(), nil, nil)
	svc := NewSweepService(prober, classifier, 10, logger.Nop(), nil, nil)

	_, err := svc.SweepAndClassify(context.Background(), "10.0.0.0/31")
	assert.ErrorIs(t, err, domain.ErrInvalidCIDR)
	assert.False(t, pinged)
}

func TestClassifyAddress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pinger := adapter.PingerFunc(func(ctx context.Context, ip string) bool { return true })
	querier := tableQuerier{"10.0.0.7": {Location: "IT Department", Name: "sw-7"}}
	clock := domain.FixedClock{T: testNow}
	prober := adapter.NewProber(pinger, querier, repo, adapter.DefaultProberConfig(), logger.Nop(), clock)
	svc := NewSweepService(prober, newKeywordClassifier(repo, nil), 10, logger.Nop(), clock, nil)

	rec, outcome, err := svc.ClassifyAddress(ctx, "10.0.0.7")
	require.NoError(t, err)
	assert.True(t, rec.ProtocolAvailable)
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeProcessed, outcome.Status)
	assert.Equal(t, domain.ScenarioUserMissing, outcome.Scenario)

	rec, outcome, err = svc.ClassifyAddress(ctx, "10.0.0.8")
	require.NoError(t, err)
	assert.True(t, rec.IsAlive)
	assert.Nil(t, outcome)

	_, _, err = svc.ClassifyAddress(ctx, "10.0.0.300")
	assert.ErrorIs(t, err, domain.ErrInvalidIP)
}
