package server

import (
	"log/slog"

	"github.com/sig-0/nbprates/server/config"
)

type Option func(s *Server)

// WithLogger specifies the logger for the server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig specifies the config for the server
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithAnalyzer enables the live analysis endpoints
func WithAnalyzer(a Analyzer) Option {
	return func(s *Server) {
		s.analyzer = a
	}
}
