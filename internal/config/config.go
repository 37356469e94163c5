// Package config provides configuration management for netinventory.
//
// The config file holds probing, classification and retention settings plus the
// department/unit keyword catalog. The database holds what was discovered and can
// be rebuilt from scans.
//
// Config file locations (priority order):
//  1. $NETINVENTORY_CONFIG
//  2. ./netinventory.yaml
//  3. $XDG_CONFIG_HOME/netinventory/config.yaml
//  4. ~/.config/netinventory/config.yaml
//  5. /etc/netinventory/config.yaml
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"netinventory/internal/domain"
	"netinventory/internal/logger"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes, defaults and validates a YAML document
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation, including a
// starter organization catalog
func DefaultConfig() *Config {
	cfg := &Config{
		Organization: DefaultOrganization(),
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = "./netinventory.db"
	}
	if c.Log.Level == "" && !c.Log.Debug {
		c.Log.Level = logger.DefaultConfig().Level
	}
	if c.Log.Output == "" {
		c.Log.Output = logger.DefaultConfig().Output
	}

	if c.Probe.PingMethod == "" {
		c.Probe.PingMethod = PingMethodExec
	}
	if c.Probe.PingTimeout == 0 {
		c.Probe.PingTimeout = Duration(time.Second)
	}
	if c.Probe.BatchSize == 0 {
		c.Probe.BatchSize = 10
	}
	if c.Probe.Workers == 0 {
		c.Probe.Workers = 10
	}
	if c.Probe.BatchPause == 0 {
		c.Probe.BatchPause = Duration(100 * time.Millisecond)
	}
	if c.Probe.MaxHosts == 0 {
		c.Probe.MaxHosts = 254
	}

	if c.SNMP.Community == "" {
		c.SNMP.Community = "public"
	}
	if c.SNMP.Port == 0 {
		c.SNMP.Port = 161
	}
	if c.SNMP.Timeout == 0 {
		c.SNMP.Timeout = Duration(5 * time.Second)
	}

	if c.Classifier.Strategy == "" {
		c.Classifier.Strategy = StrategyKeyword
	}
	if c.Classifier.MaxReportedErrors == 0 {
		c.Classifier.MaxReportedErrors = 10
	}
	if c.Classifier.DepartmentRules == nil {
		c.Classifier.DepartmentRules = DefaultDepartmentRules()
	}
	if c.Classifier.DeviceTypes == nil {
		c.Classifier.DeviceTypes = DefaultDeviceTypes()
	}

	if c.Liveness.Workers == 0 {
		c.Liveness.Workers = 10
	}

	if c.Maintenance.RecentWindow == 0 {
		c.Maintenance.RecentWindow = Duration(24 * time.Hour)
	}
	if c.Maintenance.DiscoveryRetention == 0 {
		c.Maintenance.DiscoveryRetention = Duration(7 * 24 * time.Hour)
	}
	if c.Maintenance.HistoryRetention == 0 {
		c.Maintenance.HistoryRetention = Duration(90 * 24 * time.Hour)
	}
}

// Validate rejects settings the probe engine or classifier cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Probe.PingMethod {
	case PingMethodExec, PingMethodNmap:
	default:
		errs = append(errs, fmt.Errorf("probe.ping_method: unknown method %q", c.Probe.PingMethod))
	}
	if c.Probe.PingTimeout < 0 {
		errs = append(errs, errors.New("probe.ping_timeout must be positive"))
	}
	if c.Probe.BatchSize < 1 {
		errs = append(errs, errors.New("probe.batch_size must be at least 1"))
	}
	if c.Probe.Workers < 1 {
		errs = append(errs, errors.New("probe.workers must be at least 1"))
	}
	if c.Probe.BatchPause < 0 {
		errs = append(errs, errors.New("probe.batch_pause must not be negative"))
	}
	if c.Probe.MaxHosts < 1 {
		errs = append(errs, errors.New("probe.max_hosts must be at least 1"))
	}
	if c.SNMP.Timeout < 0 {
		errs = append(errs, errors.New("snmp.timeout must be positive"))
	}
	if c.SNMP.Retries < 0 {
		errs = append(errs, errors.New("snmp.retries must not be negative"))
	}

	switch c.Classifier.Strategy {
	case StrategyKeyword, StrategyIPRange:
	default:
		errs = append(errs, fmt.Errorf("classifier.strategy: unknown strategy %q", c.Classifier.Strategy))
	}
	if c.Classifier.MaxReportedErrors < 0 {
		errs = append(errs, errors.New("classifier.max_reported_errors must not be negative"))
	}
	for i, rule := range c.Classifier.DepartmentRules {
		if strings.TrimSpace(rule.Department) == "" {
			errs = append(errs, fmt.Errorf("classifier.department_rules[%d]: department is required", i))
		}
		if len(rule.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("classifier.department_rules[%d]: at least one keyword is required", i))
		}
	}

	if c.Liveness.Workers < 1 {
		errs = append(errs, errors.New("liveness.workers must be at least 1"))
	}

	for _, target := range c.Schedule.Targets {
		if !validTarget(target) {
			errs = append(errs, fmt.Errorf("schedule.targets: %q is neither an IPv4 address nor a CIDR block", target))
		}
	}
	for name, d := range map[string]Duration{
		"scan_interval":     c.Schedule.ScanInterval,
		"classify_interval": c.Schedule.ClassifyInterval,
		"recheck_interval":  c.Schedule.RecheckInterval,
		"prune_interval":    c.Schedule.PruneInterval,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("schedule.%s must not be negative", name))
		}
	}

	seen := make(map[string]bool)
	for i, dept := range c.Organization.Departments {
		key := strings.ToLower(strings.TrimSpace(dept.Name))
		if key == "" {
			errs = append(errs, fmt.Errorf("organization.departments[%d]: name is required", i))
			continue
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("organization.departments[%d]: duplicate department %q", i, dept.Name))
		}
		if domain.IsReservedDepartmentName(dept.Name) {
			errs = append(errs, fmt.Errorf("organization.departments[%d]: %q is reserved for the sentinel department", i, dept.Name))
		}
		seen[key] = true
		for _, cidr := range dept.IPRanges {
			if _, err := netip.ParsePrefix(cidr); err != nil {
				errs = append(errs, fmt.Errorf("organization.departments[%d]: invalid ip range %q", i, cidr))
			}
		}
		for j, unit := range dept.Units {
			if strings.TrimSpace(unit.Name) == "" {
				errs = append(errs, fmt.Errorf("organization.departments[%d].units[%d]: name is required", i, j))
			}
			if domain.IsReservedUnitName(unit.Name) {
				errs = append(errs, fmt.Errorf("organization.departments[%d].units[%d]: %q is reserved for the sentinel unit", i, j, unit.Name))
			}
		}
	}

	return errors.Join(errs...)
}

func validTarget(target string) bool {
	if p, err := netip.ParsePrefix(target); err == nil {
		return p.Addr().Is4()
	}
	a, err := netip.ParseAddr(target)
	return err == nil && a.Is4()
}

// DefaultDepartmentRules returns the built-in location keyword rules
// (English and French spellings)
func DefaultDepartmentRules() []DepartmentRule {
	return []DepartmentRule{
		{Department: "IT", Keywords: []string{"it", "informatique", "dsi", "network", "reseau", "server room"}},
		{Department: "Human Resources", Keywords: []string{"hr", "rh", "ressources humaines", "human resources"}},
		{Department: "Production", Keywords: []string{"production", "atelier", "usine", "factory", "plant"}},
		{Department: "Administration", Keywords: []string{"administration", "direction", "management", "accounting"}},
	}
}

// DefaultDeviceTypes returns the device-type vocabulary of the IP-range strategy
func DefaultDeviceTypes() []string {
	return []string{"switch", "router", "firewall", "access point", "printer", "server", "ups", "camera", "phone"}
}

// DefaultOrganization returns a starter catalog matching DefaultDepartmentRules
func DefaultOrganization() OrganizationConfig {
	return OrganizationConfig{
		Departments: []DepartmentConfig{
			{
				Name:        "IT",
				Description: "Information technology",
				Units: []UnitConfig{
					{Name: "Network Equipment", Description: "Switches, routers, firewalls and access points",
						Keywords: []string{"sw", "switch", "router", "rtr", "fw", "firewall", "ap"}},
					{Name: "Servers", Keywords: []string{"srv", "server", "esx", "nas"}},
				},
			},
			{
				Name: "Human Resources",
				Units: []UnitConfig{
					{Name: "Office Equipment", Keywords: []string{"pc", "printer", "prn", "laptop"}},
				},
			},
			{
				Name: "Production",
				Units: []UnitConfig{
					{Name: "Industrial Equipment", Keywords: []string{"plc", "hmi", "scada"}},
				},
			},
			{
				Name: "Administration",
				Units: []UnitConfig{
					{Name: "Office Equipment", Keywords: []string{"pc", "printer", "prn", "laptop"}},
				},
			},
		},
	}
}
