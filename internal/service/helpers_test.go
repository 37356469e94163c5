package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netinventory/internal/config"
	"netinventory/internal/domain"
	"netinventory/internal/logger"
	"netinventory/internal/repository/sqlite"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// newTestRepo creates an in-memory repository loaded with the default catalog
func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = NewOrganizationService(repo, logger.Nop()).Sync(context.Background(), config.DefaultOrganization())
	require.NoError(t, err)
	return repo
}

func newKeywordClassifier(repo *sqlite.Repository, bus *EventBus) *Classifier {
	strategy := NewKeywordStrategy(repo, config.DefaultDepartmentRules())
	return NewClassifier(repo, strategy, 10, logger.Nop(), domain.FixedClock{T: testNow}, bus)
}

func discovery(ip, location, name, contact string) *domain.DiscoveryRecord {
	rec := domain.NewDiscoveryRecord(ip, testNow)
	rec.IsAlive = true
	rec.ProtocolAvailable = location != "" || name != "" || contact != ""
	rec.System = domain.SystemInfo{Location: location, Name: name, Contact: contact}
	return rec
}

func departmentByName(t *testing.T, repo *sqlite.Repository, name string) *domain.Department {
	t.Helper()
	d, err := repo.FindDepartmentByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, d, "department %s", name)
	return d
}

// scriptedPinger answers from a mutable table
type scriptedPinger struct {
	mu    sync.Mutex
	alive map[string]bool
}

func newScriptedPinger() *scriptedPinger {
	return &scriptedPinger{alive: make(map[string]bool)}
}

func (p *scriptedPinger) set(ip string, alive bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[ip] = alive
}

func (p *scriptedPinger) Ping(ctx context.Context, ip string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive[ip]
}

// collect drains every event currently buffered on ch
func collect(ch chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}
