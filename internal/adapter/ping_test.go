package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPingArgs(t *testing.T) {
	tests := []struct {
		goos    string
		timeout time.Duration
		want    []string
	}{
		{"linux", time.Second, []string{"-c", "1", "-W", "1", "10.0.0.1"}},
		{"linux", 200 * time.Millisecond, []string{"-c", "1", "-W", "1", "10.0.0.1"}},
		{"linux", 3 * time.Second, []string{"-c", "1", "-W", "3", "10.0.0.1"}},
		{"darwin", time.Second, []string{"-c", "1", "-W", "1000", "10.0.0.1"}},
		{"windows", time.Second, []string{"-n", "1", "-w", "1000", "10.0.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.timeout.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, pingArgs(tt.goos, "10.0.0.1", tt.timeout))
		})
	}
}

func TestExecPinger(t *testing.T) {
	var gotName string
	var gotArgs []string
	var hadDeadline bool

	p := NewExecPinger(time.Second)
	p.goos = "linux"
	p.run = func(ctx context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		_, hadDeadline = ctx.Deadline()
		if args[len(args)-1] == "10.0.0.2" {
			return errors.New("exit status 1")
		}
		return nil
	}

	assert.True(t, p.Ping(context.Background(), "10.0.0.1"))
	assert.Equal(t, "ping", gotName)
	assert.Equal(t, "10.0.0.1", gotArgs[len(gotArgs)-1])
	assert.True(t, hadDeadline, "each ping runs under its own deadline")

	assert.False(t, p.Ping(context.Background(), "10.0.0.2"))
}

func TestNewExecPingerDefaultsTimeout(t *testing.T) {
	assert.Equal(t, time.Second, NewExecPinger(0).Timeout)
}
