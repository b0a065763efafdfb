package ingest

import (
	"log/slog"
	"time"
)

type Option func(o *Orchestrator)

// WithLogger specifies the logger for the orchestrator
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithQueryInterval specifies how often the queue is checked for due jobs.
// Defaults to 1s.
// NBP tables are published once per business day, so this rarely needs tuning
func WithQueryInterval(q time.Duration) Option {
	return func(o *Orchestrator) {
		o.queryInterval = q
	}
}

// WithRetryDelay specifies how long to wait before re-running a failed fetch.
// Defaults to 10s
func WithRetryDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.retryDelay = d
	}
}

// WithSaveTimeout bounds a single storage write. Defaults to 10s
func WithSaveTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.saveTimeout = d
	}
}

// WithResultBuffer sets the capacity of the worker result channel.
// Defaults to 100
func WithResultBuffer(size int) Option {
	return func(o *Orchestrator) {
		o.resultBuffer = size
	}
}
