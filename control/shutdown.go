// control/shutdown.go
// Author: momentics <momentics@gmail.com>
//
// Cooperative shutdown: termination signal handling and the bounded,
// indefinitely retried join of the reactor goroutine.

package control

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/momentics/consolebridge/api"
	"github.com/rs/zerolog"
)

// DefaultJoinTimeout bounds a single join attempt.
const DefaultJoinTimeout = 5 * time.Second

// Coordinator stops a worker and waits for it to exit. It never gives up:
// abandoning the wait would cut an in-flight quit handshake short.
type Coordinator struct {
	JoinTimeout time.Duration
	Logger      zerolog.Logger
}

// NewCoordinator returns a coordinator joining in steps of joinTimeout.
func NewCoordinator(joinTimeout time.Duration, logger zerolog.Logger) *Coordinator {
	if joinTimeout <= 0 {
		joinTimeout = DefaultJoinTimeout
	}
	return &Coordinator{JoinTimeout: joinTimeout, Logger: logger}
}

// Shutdown sends the stop request and blocks until w has exited. Each join
// attempt that times out logs a warning and is retried.
func (c *Coordinator) Shutdown(w api.Stoppable) {
	c.Logger.Info().Msg("shutdown requested, asking remote agent to quit")
	w.RequestStop()

	start := time.Now()
	for attempt := 1; !w.Wait(c.JoinTimeout); attempt++ {
		c.Logger.Warn().
			Int("attempt", attempt).
			Dur("waited", time.Since(start)).
			Msg("bridge still running, the remote agent may not exit cleanly; keep waiting or interrupt again to force-terminate")
	}
	c.Logger.Info().Dur("waited", time.Since(start)).Msg("bridge stopped")
}

// Interrupt runs exit hooks on the first termination signal. Delivery is
// released after that first signal, so a second one falls back to the
// default action and terminates the process.
type Interrupt struct {
	sigCh    chan os.Signal
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	fired    atomic.Bool
}

// NotifyInterrupt installs the handler. Without explicit signals it
// listens for SIGINT and SIGTERM.
func NotifyInterrupt(hooks *ExitHooks, logger zerolog.Logger, signals ...os.Signal) *Interrupt {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	i := &Interrupt{
		sigCh:  make(chan os.Signal, 1),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	signal.Notify(i.sigCh, signals...)

	go func() {
		defer close(i.done)
		select {
		case sig := <-i.sigCh:
			signal.Stop(i.sigCh)
			i.fired.Store(true)
			logger.Info().Str("signal", sig.String()).Msg("termination signal received")
			hooks.Run()
		case <-i.stopCh:
		}
	}()
	return i
}

// Stop uninstalls the handler if it has not fired yet.
func (i *Interrupt) Stop() {
	i.stopOnce.Do(func() {
		signal.Stop(i.sigCh)
		close(i.stopCh)
	})
}

// Fired reports whether a signal was received.
func (i *Interrupt) Fired() bool {
	return i.fired.Load()
}

// Done is closed once the handler goroutine has finished, either after
// running the hooks or after Stop.
func (i *Interrupt) Done() <-chan struct{} {
	return i.done
}
