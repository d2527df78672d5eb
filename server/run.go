// File: server/run.go
// Package server implements the readiness loop, its dispatch, and the
// stop-request check that drives the quit handshake.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"

	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/reactor"
)

func (s *Server) run() error {
	defer close(s.done)

	err := s.loop()
	if errors.Is(err, api.ErrPeerClosed) {
		err = nil
	}
	s.release()
	s.err = err

	s.logger.Debug().
		Err(err).
		Str("code", api.CodeOf(err).String()).
		Str("state", s.state.String()).
		Msg("bridge loop finished")
	return err
}

// loop runs until the agent disconnects or an error occurs. Each iteration
// polls, dispatches every ready event, clears the ready set and then checks
// for the stop request.
func (s *Server) loop() error {
	for {
		s.metrics.Add(api.MetricLoopIterations, 1)
		if _, err := s.reactor.Poll(s.cfg.PollTimeout, s.ready); err != nil {
			s.ready.Clear()
			return api.Wrap(api.ErrCodeIO, "readiness poll", err)
		}
		err := s.dispatchReady()
		s.ready.Clear()
		if err != nil {
			return err
		}

		if s.awaitStop() {
			if s.state == api.PeerAwaiting {
				s.logger.Info().Msg("stop requested before any agent connected")
				return nil
			}
			s.quit = true
			s.logger.Info().Msg("stop requested, sending quit to agent")
		}
	}
}

func (s *Server) dispatchReady() error {
	for i := 0; i < s.ready.Len(); i++ {
		ev := s.ready.At(i)
		switch {
		case ev.Fd == s.listener.Fd():
			if ev.Ready&reactor.EventAccept != 0 {
				if err := s.acceptPeer(); err != nil {
					return err
				}
			}
		case s.peer != nil && ev.Fd == s.peer.RawFD():
			if ev.Ready&reactor.EventRead != 0 {
				if err := s.drainPeer(); err != nil {
					return err
				}
			}
			if ev.Ready&reactor.EventWrite != 0 {
				if err := s.feedPeer(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// awaitStop waits up to ControlTimeout for the stop request and reports
// whether it was observed by this call. After the quit flag is set the
// request counts as consumed and the wait only paces the loop.
func (s *Server) awaitStop() bool {
	stop := s.stop
	if s.quit {
		stop = nil
	}
	s.controlTimer.Reset(s.cfg.ControlTimeout)
	select {
	case <-stop:
		s.controlTimer.Stop()
		return true
	case <-s.controlTimer.C:
		return false
	}
}
