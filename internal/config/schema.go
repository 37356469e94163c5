package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"netinventory/internal/logger"
)

// Config is the root configuration structure
type Config struct {
	Version      int                `yaml:"version"`
	Database     DatabaseConfig     `yaml:"database"`
	Log          logger.Config      `yaml:"log"`
	Probe        ProbeConfig        `yaml:"probe"`
	SNMP         SNMPConfig         `yaml:"snmp"`
	Classifier   ClassifierConfig   `yaml:"classifier"`
	Liveness     LivenessConfig     `yaml:"liveness"`
	Maintenance  MaintenanceConfig  `yaml:"maintenance"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Organization OrganizationConfig `yaml:"organization"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Ping methods
const (
	PingMethodExec = "exec"
	PingMethodNmap = "nmap"
)

// ProbeConfig tunes subnet probing
type ProbeConfig struct {
	PingMethod  string   `yaml:"ping_method"`  // exec or nmap
	PingTimeout Duration `yaml:"ping_timeout"` // per-address echo deadline
	BatchSize   int      `yaml:"batch_size"`
	Workers     int      `yaml:"workers"`
	BatchPause  Duration `yaml:"batch_pause"`
	MaxHosts    int      `yaml:"max_hosts"`

	// PreserveProcessed keeps processed staging records processed when they are rediscovered
	PreserveProcessed bool `yaml:"preserve_processed"`
}

// SNMPConfig holds the v2c system-group query settings
type SNMPConfig struct {
	Enabled   *bool    `yaml:"enabled,omitempty"` // nil = enabled
	Community string   `yaml:"community"`
	Port      uint16   `yaml:"port"`
	Timeout   Duration `yaml:"timeout"`
	Retries   int      `yaml:"retries"`
}

// IsEnabled reports whether SNMP queries should be issued
func (s SNMPConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Classification strategies
const (
	StrategyKeyword = "keyword"
	StrategyIPRange = "ip_range"
)

// ClassifierConfig holds the placement heuristics
type ClassifierConfig struct {
	Strategy          string           `yaml:"strategy"`
	MaxReportedErrors int              `yaml:"max_reported_errors"`
	DepartmentRules   []DepartmentRule `yaml:"department_rules,omitempty"`
	DeviceTypes       []string         `yaml:"device_types,omitempty"`
}

// DepartmentRule maps location keyword phrases to a department name.
// Rules are tried in order.
type DepartmentRule struct {
	Department string   `yaml:"department"`
	Keywords   []string `yaml:"keywords"`
}

// LivenessConfig tunes device re-checks
type LivenessConfig struct {
	Workers int `yaml:"workers"`
}

// MaintenanceConfig holds reporting and retention windows
type MaintenanceConfig struct {
	RecentWindow       Duration `yaml:"recent_window"`
	DiscoveryRetention Duration `yaml:"discovery_retention"`
	HistoryRetention   Duration `yaml:"history_retention"`
}

// ScheduleConfig drives the run command. A zero interval disables the job.
type ScheduleConfig struct {
	Targets          []string `yaml:"targets,omitempty"`
	ScanInterval     Duration `yaml:"scan_interval"`
	ClassifyInterval Duration `yaml:"classify_interval"`
	RecheckInterval  Duration `yaml:"recheck_interval"`
	PruneInterval    Duration `yaml:"prune_interval"`
}

// OrganizationConfig is the department/unit keyword catalog
type OrganizationConfig struct {
	Departments []DepartmentConfig `yaml:"departments,omitempty"`
}

// DepartmentConfig declares one department with its units and owned ranges
type DepartmentConfig struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	IPRanges    []string     `yaml:"ip_ranges,omitempty"`
	Units       []UnitConfig `yaml:"units,omitempty"`
}

// UnitConfig declares one equipment unit
type UnitConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
