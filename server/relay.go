package server

import (
	"errors"
	"io"

	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/reactor"
)

// acceptPeer admits the first agent and turns accept interest off for the
// rest of the run. Only an awaiting bridge ever accepts.
func (s *Server) acceptPeer() error {
	if s.state != api.PeerAwaiting {
		return s.disableAccept()
	}
	peer, err := s.listener.Accept()
	if errors.Is(err, api.ErrWouldBlock) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.reactor.Register(peer.RawFD(), reactor.EventRead|reactor.EventWrite); err != nil {
		_ = peer.Close()
		return api.Wrap(api.ErrCodeAccept, "register agent", err)
	}
	s.peer = peer
	s.state = api.PeerServing
	s.metrics.Add(api.MetricPeerAccepted, 1)
	s.logger.Info().Str("remote_addr", peer.RemoteAddr()).Msg("agent connected")
	return s.disableAccept()
}

func (s *Server) disableAccept() error {
	if err := s.reactor.Modify(s.listener.Fd(), reactor.EventNone); err != nil {
		return api.Wrap(api.ErrCodeInternal, "disable accept interest", err)
	}
	return nil
}

// drainPeer copies everything the agent has sent to the console, chunk by
// chunk, until the socket would block.
func (s *Server) drainPeer() error {
	for {
		n, err := s.peer.Read(s.readBuf)
		switch {
		case errors.Is(err, api.ErrWouldBlock):
			return nil
		case err == io.EOF:
			return s.peerClosed()
		case err != nil:
			return api.Wrap(api.ErrCodeIO, "read from agent", err)
		}
		s.metrics.Add(api.MetricPeerBytesIn, int64(n))
		if _, err := s.console.Write(s.readBuf[:n]); err != nil {
			return api.Wrap(api.ErrCodeIO, "write to console", err)
		}
	}
}

// feedPeer uses one write opportunity: the quit literal while draining,
// otherwise whatever console input is available right now.
func (s *Server) feedPeer() error {
	if s.quit {
		if err := s.writePeer(quitPayload); err != nil {
			return err
		}
		s.metrics.Add(api.MetricQuitSent, 1)
		return nil
	}

	n, err := s.console.Available()
	if err != nil {
		return api.Wrap(api.ErrCodeIO, "query console input", err)
	}
	if n <= 0 {
		return nil
	}
	if cap(s.inBuf) < n {
		s.inBuf = make([]byte, n)
	}
	buf := s.inBuf[:n]
	if _, err := io.ReadFull(s.console, buf); err != nil {
		return api.Wrap(api.ErrCodeIO, "read console input", err)
	}
	s.metrics.Add(api.MetricConsoleBytesIn, int64(n))
	if err := s.writePeer(buf); err != nil {
		return err
	}
	s.metrics.Add(api.MetricPeerBytesOut, int64(n))
	return nil
}

func (s *Server) writePeer(p []byte) error {
	err := s.peer.WriteFull(p)
	switch {
	case err == nil, errors.Is(err, api.ErrSendBufferOverflow):
		return err
	case errors.Is(err, api.ErrPeerClosed):
		return s.peerClosed()
	default:
		return api.Wrap(api.ErrCodeIO, "write to agent", err)
	}
}

// peerClosed releases the agent socket and ends the loop normally.
func (s *Server) peerClosed() error {
	s.logger.Info().Str("remote_addr", s.peer.RemoteAddr()).Msg("agent disconnected")
	_ = s.reactor.Unregister(s.peer.RawFD())
	_ = s.peer.Close()
	s.peer = nil
	s.state = api.PeerGone
	return api.ErrPeerClosed
}
