package adapter

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// ExecPinger sends one ICMP echo through the system ping utility
type ExecPinger struct {
	Timeout time.Duration
	goos    string
	run     func(ctx context.Context, name string, args ...string) error
}

// NewExecPinger creates a pinger waiting at most timeout for a reply
func NewExecPinger(timeout time.Duration) *ExecPinger {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &ExecPinger{
		Timeout: timeout,
		goos:    runtime.GOOS,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Ping reports whether ip answered. Exit status 0 is success; any error,
// including the deadline expiring, counts as unreachable.
func (p *ExecPinger) Ping(ctx context.Context, ip string) bool {
	// Give the utility a little longer than its own wait before killing it.
	ctx, cancel := context.WithTimeout(ctx, p.Timeout+500*time.Millisecond)
	defer cancel()

	return p.run(ctx, "ping", pingArgs(p.goos, ip, p.Timeout)...) == nil
}

// pingArgs builds a single-echo command line for the given OS
func pingArgs(goos, ip string, timeout time.Duration) []string {
	if goos == "windows" {
		ms := timeout.Milliseconds()
		if ms < 1 {
			ms = 1000
		}
		return []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), ip}
	}

	timeoutSec := int(timeout.Seconds())
	if timeoutSec < 1 {
		timeoutSec = 1
	}
	if goos == "darwin" {
		// BSD ping takes the wait in milliseconds
		return []string{"-c", "1", "-W", strconv.Itoa(timeoutSec * 1000), ip}
	}
	// Linux ping: -c count, -W timeout in seconds
	return []string{"-c", "1", "-W", strconv.Itoa(timeoutSec), ip}
}
