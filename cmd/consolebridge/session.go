// File: cmd/consolebridge/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"os"
	"time"

	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/attach"
	"github.com/momentics/consolebridge/control"
	"github.com/momentics/consolebridge/server"
	"github.com/rs/zerolog"
)

// exitError marks an error that has already been logged; main only turns
// it into an exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func reported(err error) error {
	return &exitError{code: 1, err: err}
}

// session drives one bridge run from attach to termination. A nil
// attacher or a zero pid skips the attach step.
type session struct {
	srv         *server.Server
	attacher    attach.Attacher
	pid         int
	agent       attach.Agent
	joinTimeout time.Duration
	logger      zerolog.Logger
	metrics     *control.MetricsRegistry
	signals     []os.Signal
}

// run owns srv: it is started or closed on every path. The interrupt
// handler is installed before the attach, so an early signal cancels the
// attach and still releases the endpoint.
func (s *session) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator := control.NewCoordinator(s.joinTimeout, s.logger)
	hooks := control.NewExitHooks(s.logger)
	hooks.Register(cancel)
	hooks.Register(func() { coordinator.Shutdown(s.srv) })
	intr := control.NotifyInterrupt(hooks, s.logger, s.signals...)
	defer func() {
		intr.Stop()
		<-intr.Done()
	}()

	if s.attacher != nil && s.pid != 0 {
		if err := attach.Trigger(ctx, s.attacher, s.pid, s.agent, s.logger); err != nil {
			_ = s.srv.Close()
			return reported(err)
		}
	} else {
		s.logger.Info().Msg("no target process given, waiting for an agent to connect")
	}

	if err := s.srv.Start(); err != nil {
		// Only a Close racing the start gets here.
		return err
	}
	<-s.srv.Done()

	s.logger.Info().
		Interface("stats", s.srv.Stats()).
		Dur("elapsed", s.metrics.Elapsed()).
		Msg("bridge statistics")
	if err := s.srv.Err(); err != nil {
		s.logger.Error().
			Err(err).
			Str("code", api.CodeOf(err).String()).
			Msg("bridge terminated with error")
		return reported(err)
	}
	s.logger.Info().Msg("bridge terminated")
	return nil
}
