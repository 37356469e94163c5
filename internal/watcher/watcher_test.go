package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinventory/internal/config"
	"netinventory/internal/logger"
)

const validConfig = `
classifier:
  department_rules:
    - department: IT
      keywords: [lab]
`

// recorder collects applied configurations
type recorder struct {
	mu      sync.Mutex
	applied []*config.Config
	err     error
}

func (r *recorder) apply(ctx context.Context, cfg *config.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.applied = append(r.applied, cfg)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.applied)
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netinventory.yaml")
	writeConfig(t, path, validConfig)

	rec := &recorder{}
	w := New(path, rec.apply, logger.Nop())

	require.NoError(t, w.Reload(context.Background()))
	require.Equal(t, 1, rec.count())
	assert.Equal(t, []string{"lab"}, rec.applied[0].Classifier.DepartmentRules[0].Keywords)
	assert.Equal(t, 1, w.Reloads())

	t.Run("invalid file keeps previous config", func(t *testing.T) {
		writeConfig(t, path, "probe:\n  ping_method: carrier-pigeon\n")
		assert.Error(t, w.Reload(context.Background()))
		assert.Equal(t, 1, rec.count())
		assert.Equal(t, 1, w.Reloads())
	})

	t.Run("apply error", func(t *testing.T) {
		writeConfig(t, path, validConfig)
		rec.err = errors.New("sync failed")
		assert.Error(t, w.Reload(context.Background()))
		assert.Equal(t, 1, w.Reloads())
		rec.err = nil
	})
}

func TestWatchAppliesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netinventory.yaml")
	writeConfig(t, path, validConfig)

	rec := &recorder{}
	w := New(path, rec.apply, logger.Nop()).WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	writeConfig(t, path, validConfig)
	writeConfig(t, path, validConfig)
	writeConfig(t, filepath.Join(filepath.Dir(path), "other.yaml"), "ignored: true")

	assert.Eventually(t, func() bool { return rec.count() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
