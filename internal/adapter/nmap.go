package adapter

import (
	"context"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/rs/zerolog"
)

// NmapPinger decides reachability with an nmap host-discovery scan (-sn)
type NmapPinger struct {
	timeout    time.Duration
	binaryPath string
	resolveDNS bool
	log        zerolog.Logger
}

// NewNmapPinger creates an nmap-backed pinger
func NewNmapPinger(log zerolog.Logger, opts ...NmapOption) *NmapPinger {
	p := &NmapPinger{
		timeout: time.Second,
		log:     log,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Ping reports whether nmap found ip up
func (p *NmapPinger) Ping(ctx context.Context, ip string) bool {
	// nmap adds its own startup cost on top of the probe wait
	ctx, cancel := context.WithTimeout(ctx, p.timeout+2*time.Second)
	defer cancel()

	scanner, err := nmap.NewScanner(ctx, p.options(nmap.WithTargets(ip), nmap.WithPingScan())...)
	if err != nil {
		p.log.Debug().Err(err).Str("ip", ip).Msg("failed to create nmap scanner")
		return false
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		p.log.Debug().Err(err).Str("ip", ip).Msg("nmap ping scan failed")
		return false
	}
	if warnings != nil && len(*warnings) > 0 {
		p.log.Debug().Strs("warnings", *warnings).Str("ip", ip).Msg("nmap warnings")
	}

	return hostUp(result)
}

// Available reports whether the nmap binary can be executed
func (p *NmapPinger) Available(ctx context.Context) bool {
	scanner, err := nmap.NewScanner(ctx, p.options(nmap.WithTargets("localhost"), nmap.WithListScan())...)
	if err != nil {
		return false
	}

	_, _, err = scanner.Run()
	return err == nil
}

func (p *NmapPinger) options(extra ...nmap.Option) []nmap.Option {
	opts := extra
	if p.binaryPath != "" {
		opts = append(opts, nmap.WithBinaryPath(p.binaryPath))
	}
	if !p.resolveDNS {
		opts = append(opts, nmap.WithDisabledDNSResolution())
	}
	return opts
}

// hostUp reports whether any host in result is in state "up"
func hostUp(result *nmap.Run) bool {
	if result == nil {
		return false
	}
	for _, host := range result.Hosts {
		if len(host.Addresses) == 0 {
			continue
		}
		if host.Status.State == "up" {
			return true
		}
	}
	return false
}

// NewPinger returns the pinger for method. An nmap pinger is used only when the
// binary is available; otherwise the system ping utility is used and a warning
// is logged.
func NewPinger(ctx context.Context, method string, timeout time.Duration, log zerolog.Logger) Pinger {
	if method == "nmap" {
		p := NewNmapPinger(log, WithPingTimeout(timeout))
		if p.Available(ctx) {
			return p
		}
		log.Warn().Msg("nmap binary not available, falling back to system ping")
	}
	return NewExecPinger(timeout)
}
