package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/control"
	"github.com/momentics/consolebridge/reactor"
	"github.com/momentics/consolebridge/transport/tcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var quitPayload = []byte(api.QuitMessage)

// Server is the console bridge. All fields below the divider belong to the
// loop goroutine once Run or Start has been called.
type Server struct {
	cfg     *Config
	console api.Console
	logger  zerolog.Logger
	metrics *control.MetricsRegistry

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  atomic.Bool
	err      error // set before done is closed

	// ---- loop-owned state ----
	reactor      reactor.EventReactor
	listener     *tcp.Listener
	peer         api.PeerConn
	state        api.PeerState
	quit         bool
	ready        *reactor.ReadySet
	readBuf      []byte
	inBuf        []byte
	controlTimer *time.Timer
}

var _ api.Stoppable = (*Server)(nil)

// NewServer validates cfg, binds the listening endpoint and arms it for
// accept. Nothing is opened when validation fails; anything opened before
// a later failure is closed again.
func NewServer(cfg *Config, console api.Console, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		console: console,
		logger:  log.Logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		state:   api.PeerAwaiting,
		ready:   reactor.NewReadySet(),
		readBuf: make([]byte, cfg.ReadBufferSize),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = control.NewMetricsRegistry()
	}
	s.logger = s.logger.With().Str("component", "bridge").Logger()

	r, err := reactor.NewReactor()
	if err != nil {
		return nil, api.Wrap(api.ErrCodeNotSupported, "create reactor", err)
	}
	ln, err := tcp.Listen(cfg.Port, cfg.peerOptions())
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	if err := r.Register(ln.Fd(), reactor.EventAccept); err != nil {
		_ = ln.Close()
		_ = r.Close()
		return nil, api.Wrap(api.ErrCodeBind, "register listener", err)
	}
	s.reactor = r
	s.listener = ln

	s.controlTimer = time.NewTimer(cfg.ControlTimeout)
	s.controlTimer.Stop()

	s.logger.Info().Str("addr", ln.Addr()).Int("port", ln.Port()).Msg("listening for agent")
	return s, nil
}

// Addr returns the listening endpoint in host:port form.
func (s *Server) Addr() string { return s.listener.Addr() }

// Port returns the bound port.
func (s *Server) Port() int { return s.listener.Port() }

// Run executes the loop on the calling goroutine. It returns nil when the
// agent disconnects or a stop is requested before any agent connected, and
// the loop error otherwise. Resources are released in every case.
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return api.ErrAlreadyStarted
	}
	return s.run()
}

// Start executes the loop on a new goroutine. Use Wait, Done and Err to
// observe its end.
func (s *Server) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return api.ErrAlreadyStarted
	}
	go s.run()
	return nil
}

// RequestStop delivers the one-shot stop request. Safe from any goroutine.
func (s *Server) RequestStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Wait blocks up to timeout and reports whether the loop has exited.
func (s *Server) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.done:
		return true
	case <-t.C:
		return false
	}
}

// Done is closed when the loop has exited and released its resources.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Err returns the loop result once Done is closed, nil before.
func (s *Server) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Stats returns a snapshot of the bridge counters.
func (s *Server) Stats() map[string]int64 {
	return s.metrics.Stats()
}

// Close releases the endpoint of a server that was never run, for example
// when the startup attach fails. It is a no-op once the loop has started.
func (s *Server) Close() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	s.release()
	close(s.done)
	return nil
}

// release closes everything the loop owns. Errors are ignored: this is the
// best-effort cleanup path.
func (s *Server) release() {
	if s.peer != nil {
		_ = s.peer.Close()
		s.peer = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.reactor != nil {
		_ = s.reactor.Close()
	}
}
