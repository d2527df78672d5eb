package control_test

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/consolebridge/control"
	"github.com/rs/zerolog"
)

// slowWorker exits only after a fixed number of join attempts.
type slowWorker struct {
	stops    atomic.Int32
	waits    atomic.Int32
	exitAt   int32
	timeouts []time.Duration
}

func (w *slowWorker) RequestStop() { w.stops.Add(1) }

func (w *slowWorker) Wait(timeout time.Duration) bool {
	w.timeouts = append(w.timeouts, timeout)
	return w.waits.Add(1) >= w.exitAt
}

func TestCoordinatorRetriesUntilExit(t *testing.T) {
	tests := []struct {
		name         string
		exitAt       int32
		wantWarnings int
	}{
		{name: "exits on first join", exitAt: 1, wantWarnings: 0},
		{name: "exits after retries", exitAt: 4, wantWarnings: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			c := control.NewCoordinator(20*time.Millisecond, zerolog.New(&logs))
			w := &slowWorker{exitAt: tt.exitAt}

			c.Shutdown(w)

			if got := w.stops.Load(); got != 1 {
				t.Errorf("expected exactly one stop request, got %d", got)
			}
			if got := w.waits.Load(); got != tt.exitAt {
				t.Errorf("expected %d join attempts, got %d", tt.exitAt, got)
			}
			for _, d := range w.timeouts {
				if d != 20*time.Millisecond {
					t.Errorf("unexpected join timeout %v", d)
				}
			}
			if got := strings.Count(logs.String(), `"level":"warn"`); got != tt.wantWarnings {
				t.Errorf("expected %d warnings, got %d: %s", tt.wantWarnings, got, logs.String())
			}
		})
	}
}

func TestCoordinatorDefaultsJoinTimeout(t *testing.T) {
	c := control.NewCoordinator(0, zerolog.Nop())
	if c.JoinTimeout != control.DefaultJoinTimeout {
		t.Fatalf("expected %v, got %v", control.DefaultJoinTimeout, c.JoinTimeout)
	}
}

func TestInterruptStopWithoutSignal(t *testing.T) {
	hooks := control.NewExitHooks(zerolog.Nop())
	ran := false
	hooks.Register(func() { ran = true })

	i := control.NotifyInterrupt(hooks, zerolog.Nop())
	i.Stop()
	i.Stop()
	select {
	case <-i.Done():
	case <-time.After(time.Second):
		t.Fatal("handler goroutine did not finish after Stop")
	}
	if i.Fired() || ran {
		t.Fatal("hooks must not run without a signal")
	}
}
