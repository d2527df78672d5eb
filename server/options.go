// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/consolebridge/control"
	"github.com/rs/zerolog"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger sets the structured logger. The global zerolog logger is used otherwise.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics shares a metrics registry with the caller.
func WithMetrics(metrics *control.MetricsRegistry) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}
