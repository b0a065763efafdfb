package analysis

import (
	"log/slog"
	"time"
)

type Option func(s *Service)

// WithLogger specifies the logger for the service
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock specifies the source of the current date, used
// when a request carries no anchor date
func WithClock(today func() time.Time) Option {
	return func(s *Service) {
		s.today = today
	}
}

// WithConcurrency specifies how many range requests run in parallel.
// Defaults to 4
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}
