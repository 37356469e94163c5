package adapter

import "time"

// NmapOption is a functional option for configuring NmapPinger
type NmapOption func(*NmapPinger)

// WithPingTimeout sets how long a single host-discovery scan may wait
func WithPingTimeout(d time.Duration) NmapOption {
	return func(p *NmapPinger) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithBinaryPath points at a specific nmap executable
func WithBinaryPath(path string) NmapOption {
	return func(p *NmapPinger) {
		p.binaryPath = path
	}
}

// WithDNSResolution enables reverse DNS lookups during the scan (off by default)
func WithDNSResolution(enabled bool) NmapOption {
	return func(p *NmapPinger) {
		p.resolveDNS = enabled
	}
}
