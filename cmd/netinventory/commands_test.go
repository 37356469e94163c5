package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinventory/internal/config"
	"netinventory/internal/domain"
	"netinventory/internal/scheduler"
	"netinventory/internal/service"
)

const discoveriesYAML = `
discoveries:
  - ip_address: 10.0.0.1
    is_alive: true
    protocol_available: true
    system:
      system_name: sw-42
      system_location: IT Department
      system_contact: "Contact: J. Doe <jdoe@example.com>"
    discovered_at: 2025-03-14T09:30:00Z
  - ip_address: 10.0.0.2
    is_alive: true
    discovered_at: 2025-03-14T09:31:00Z
`

// setupEnv writes a default config pointing at a temp database and returns its path
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "inventory.db")
	cfg.Log.Level = "error"

	path := filepath.Join(dir, "netinventory.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

// execute runs the CLI with args and returns stdout
func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := execute(t, cfgPath, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func findSubcommand(root *cobra.Command, path ...string) *cobra.Command {
	cmd, _, err := root.Find(path)
	if err != nil || cmd == root {
		return nil
	}
	return cmd
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"scan"}, {"classify"}, {"recheck"}, {"stats"}, {"prune"}, {"run"}, {"doctor"},
		{"staging", "list"}, {"staging", "get"}, {"staging", "delete"}, {"staging", "mark"}, {"staging", "import"},
		{"devices", "list"}, {"devices", "get"}, {"devices", "history"},
		{"org", "sync"}, {"org", "list"}, {"config", "show"}, {"config", "init"},
	} {
		cmd := findSubcommand(root, path...)
		require.NotNil(t, cmd, strings.Join(path, " "))
		assert.NotEmpty(t, cmd.Short, strings.Join(path, " "))
	}

	scan := findSubcommand(root, "scan")
	assert.NotNil(t, scan.Flags().Lookup("direct"))
	assert.Contains(t, scan.Long, "staged")
}

func TestInvalidOutputFormat(t *testing.T) {
	cfgPath := setupEnv(t)
	_, err := execute(t, cfgPath, "stats", "-o", "xml")
	assert.Error(t, err)
}

func TestScanRejectsInvalidTarget(t *testing.T) {
	cfgPath := setupEnv(t)

	_, err := execute(t, cfgPath, "scan", "10.0.0.0/31")
	assert.ErrorIs(t, err, domain.ErrInvalidCIDR)

	_, err = execute(t, cfgPath, "scan", "not-an-ip")
	assert.ErrorIs(t, err, domain.ErrInvalidIP)
}

func TestImportClassifyInspect(t *testing.T) {
	cfgPath := setupEnv(t)
	file := filepath.Join(t.TempDir(), "discoveries.yaml")
	require.NoError(t, os.WriteFile(file, []byte(discoveriesYAML), 0644))

	imported := decode[map[string]int](t, mustExecute(t, cfgPath, "staging", "import", file))
	assert.Equal(t, 2, imported["imported"])

	pending := decode[domain.Page[domain.DiscoveryRecord]](t, mustExecute(t, cfgPath, "staging", "list", "--status", "pending"))
	assert.EqualValues(t, 2, pending.Total)

	stats := decode[domain.RunStats](t, mustExecute(t, cfgPath, "classify"))
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 1, stats.Scenarios[domain.ScenarioUserMissing]+stats.Scenarios[domain.ScenarioAllFound])
	assert.Equal(t, 1, stats.Scenarios[domain.ScenarioNothingMatches])

	dev := decode[domain.Device](t, mustExecute(t, cfgPath, "devices", "get", "10.0.0.1"))
	assert.Equal(t, "sw-42", dev.Hostname)
	assert.Equal(t, "J. Doe", dev.UserName)

	byID := decode[domain.Device](t, mustExecute(t, cfgPath, "devices", "get", "1"))
	assert.Equal(t, dev.IPAddress, byID.IPAddress)

	devices := decode[[]domain.Device](t, mustExecute(t, cfgPath, "devices", "list"))
	assert.Len(t, devices, 2)

	history := decode[[]domain.StatusHistoryEntry](t, mustExecute(t, cfgPath, "devices", "history", "10.0.0.1"))
	assert.Empty(t, history)

	processed := decode[domain.Page[domain.DiscoveryRecord]](t, mustExecute(t, cfgPath, "staging", "list", "--status", "processed"))
	assert.EqualValues(t, 2, processed.Total)

	summary := decode[domain.StagingStats](t, mustExecute(t, cfgPath, "stats"))
	assert.EqualValues(t, 2, summary.Total)
	assert.EqualValues(t, 2, summary.Processed)
	assert.EqualValues(t, 1, summary.ProtocolAvailable)
	assert.EqualValues(t, 2, summary.Devices)

	t.Run("mark and retry", func(t *testing.T) {
		marked := decode[domain.DiscoveryRecord](t, mustExecute(t, cfgPath, "staging", "mark", "10.0.0.2", "failed", "--message", "bad data"))
		assert.Equal(t, domain.DiscoveryFailed, marked.Status)
		assert.Equal(t, "bad data", marked.ErrorMessage)

		stats := decode[domain.RunStats](t, mustExecute(t, cfgPath, "classify", "--retry-failed"))
		assert.Equal(t, 1, stats.Processed)
		assert.Equal(t, 1, stats.Updated)

		_, err := execute(t, cfgPath, "staging", "mark", "10.0.0.2", "bogus")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("delete", func(t *testing.T) {
		mustExecute(t, cfgPath, "staging", "delete", "10.0.0.2")

		_, err := execute(t, cfgPath, "staging", "get", "10.0.0.2")
		assert.Error(t, err)

		_, err = execute(t, cfgPath, "staging", "delete", "10.0.0.2")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown device", func(t *testing.T) {
		_, err := execute(t, cfgPath, "devices", "get", "10.9.9.9")
		assert.Error(t, err)
	})

	t.Run("yaml output", func(t *testing.T) {
		out := mustExecute(t, cfgPath, "devices", "get", "10.0.0.1", "-o", "yaml")
		assert.Contains(t, out, "hostname: sw-42")
	})

	t.Run("prune keeps recent rows", func(t *testing.T) {
		result := decode[domain.PruneResult](t, mustExecute(t, cfgPath, "prune"))
		assert.Zero(t, result.HistoryRemoved)
	})
}

func TestOrgCommands(t *testing.T) {
	cfgPath := setupEnv(t)

	synced := decode[service.SyncResult](t, mustExecute(t, cfgPath, "org", "sync"))
	assert.Equal(t, len(config.DefaultOrganization().Departments), synced.Departments)

	out := mustExecute(t, cfgPath, "org", "list")
	var views []struct {
		Name       string        `json:"name"`
		IsSentinel bool          `json:"is_sentinel"`
		Units      []domain.Unit `json:"units"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &views))

	var sentinel, it bool
	for _, v := range views {
		if v.IsSentinel {
			sentinel = v.Name == domain.UnknownDepartmentName
		}
		if v.Name == "IT" {
			it = len(v.Units) >= 2
		}
	}
	assert.True(t, sentinel, "sentinel department listed")
	assert.True(t, it, "IT units listed")
}

func TestRunOnce(t *testing.T) {
	cfgPath := setupEnv(t)

	out := mustExecute(t, cfgPath, "run", "--once")
	var result struct {
		Jobs  []scheduler.JobInfo `json:"jobs"`
		Error string              `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Empty(t, result.Error)
	require.Len(t, result.Jobs, 4)
	for _, job := range result.Jobs {
		assert.Equal(t, 1, job.Runs, job.Name)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netinventory.yaml")

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"config", "init", path})
	assert.Error(t, cmd.Execute(), "refuses to overwrite")

	cmd = newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"config", "init", path, "--force"})
	require.NoError(t, cmd.Execute())

	out := mustExecute(t, path, "config", "show")
	assert.Contains(t, out, "strategy: keyword")
	assert.Contains(t, out, "ping_timeout: 1s")
}
