// Package logger builds the zerolog loggers shared by every component
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls log level and destination
type Config struct {
	Level      string `json:"level" yaml:"level"`
	Debug      bool   `json:"debug" yaml:"debug"`
	Output     string `json:"output" yaml:"output"` // stdout, stderr or console
	TimeFormat string `json:"time_format" yaml:"time_format"`
}

// DefaultConfig logs JSON at info level to stderr, keeping stdout for command output
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: "stderr",
	}
}

// New builds a logger from cfg
func New(cfg Config) (zerolog.Logger, error) {
	return NewWithWriter(cfg, nil)
}

// NewWithWriter builds a logger from cfg writing to w. A nil w selects the
// writer named by cfg.Output.
func NewWithWriter(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	timeFormat := time.RFC3339
	if cfg.TimeFormat != "" {
		timeFormat = cfg.TimeFormat
	}

	if w == nil {
		switch cfg.Output {
		case "", "stderr":
			w = os.Stderr
		case "stdout":
			w = os.Stdout
		case "console":
			w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
		default:
			return zerolog.Nop(), fmt.Errorf("invalid log output %q", cfg.Output)
		}
	}

	zerolog.TimeFieldFormat = timeFormat

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// Nop returns a disabled logger
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithComponent tags every event of log with the component name
func WithComponent(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
