// Package bootstrap inspects the host before the first scan: whether ICMP echo
// and nmap work here, and which local IPv4 subnets are candidate scan targets.
package bootstrap

import (
	"context"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"netinventory/internal/adapter"
	"netinventory/internal/config"
)

// Check is one preflight verdict
type Check struct {
	Name   string `json:"name" yaml:"name"`
	OK     bool   `json:"ok" yaml:"ok"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Report is the result of Run
type Report struct {
	Hostname   string              `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	ConfigPath string              `json:"config_path,omitempty" yaml:"config_path,omitempty"`
	ConfigSeen []config.SearchPath `json:"config_search,omitempty" yaml:"config_search,omitempty"`
	Checks     []Check             `json:"checks" yaml:"checks"`
	Subnets    []Subnet            `json:"subnets" yaml:"subnets"`
	Suggested  []string            `json:"suggested_targets,omitempty" yaml:"suggested_targets,omitempty"`
}

// OK reports whether every check passed
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Availability is implemented by optional external tools such as nmap
type Availability interface {
	Available(ctx context.Context) bool
}

// Run performs every check. nmap may be nil to skip the nmap check.
func Run(ctx context.Context, pinger adapter.Pinger, nmap Availability, log zerolog.Logger) *Report {
	log = log.With().Str("component", "bootstrap").Logger()
	report := &Report{}

	if hostname, err := os.Hostname(); err == nil {
		report.Hostname = hostname
	}
	report.ConfigSeen = config.SearchPaths()

	path, err := exec.LookPath("ping")
	if err != nil {
		report.Checks = append(report.Checks, Check{Name: "ping_binary", Detail: "ping not found in PATH"})
	} else {
		report.Checks = append(report.Checks, Check{Name: "ping_binary", OK: true, Detail: path})
	}

	loopback := pinger.Ping(ctx, "127.0.0.1")
	detail := "echo to 127.0.0.1 answered"
	if !loopback {
		detail = "echo to 127.0.0.1 failed, ICMP may need privileges"
	}
	report.Checks = append(report.Checks, Check{Name: "icmp_loopback", OK: loopback, Detail: detail})

	if nmap != nil {
		ok := nmap.Available(ctx)
		detail := "nmap list scan succeeded"
		if !ok {
			detail = "nmap unavailable, ping_method exec will be used"
		}
		report.Checks = append(report.Checks, Check{Name: "nmap", OK: ok, Detail: detail})
	}

	subnets, err := DetectSubnets()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list network interfaces")
	}
	report.Subnets = subnets
	if report.Subnets == nil {
		report.Subnets = []Subnet{}
	}
	report.Suggested = SuggestTargets(subnets)
	report.Checks = append(report.Checks, Check{
		Name:   "local_subnets",
		OK:     len(report.Suggested) > 0,
		Detail: "private IPv4 subnets usable as scan targets",
	})

	for _, c := range report.Checks {
		log.Debug().Str("check", c.Name).Bool("ok", c.OK).Str("detail", c.Detail).Msg("preflight check")
	}
	return report
}
