package harness

import (
	"io"
	"log/slog"
)

type config struct {
	humanReadable bool
	logger        *slog.Logger
}

// Option configures a single check.
type Option func(*config)

// WithHumanReadable sets the answer to the human-readable mode query.
//
// Default: false (compact)
func WithHumanReadable(readable bool) Option {
	return func(c *config) {
		c.humanReadable = readable
	}
}

// WithLogger routes per-token debug logs to l.
//
// Default: logs are discarded
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs unless asked
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
