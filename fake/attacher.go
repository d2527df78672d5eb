package fake

import (
	"context"
	"sync"

	"github.com/momentics/consolebridge/attach"
)

// AttachCall records one Attach invocation.
type AttachCall struct {
	PID   int
	Agent attach.Agent
}

// Attacher is a fake attach.Attacher. It either returns a fixed error or
// blocks until the caller's context ends.
type Attacher struct {
	mu      sync.Mutex
	err     error
	block   bool
	started chan struct{}
	once    sync.Once
	calls   []AttachCall
}

var _ attach.Attacher = (*Attacher)(nil)

// NewAttacher returns an attacher whose Attach always returns err.
func NewAttacher(err error) *Attacher {
	return &Attacher{err: err, started: make(chan struct{})}
}

// NewBlockingAttacher returns an attacher whose Attach waits for its
// context to be cancelled and returns the context error.
func NewBlockingAttacher() *Attacher {
	return &Attacher{block: true, started: make(chan struct{})}
}

// Attach implements attach.Attacher.
func (a *Attacher) Attach(ctx context.Context, pid int, agent attach.Agent) error {
	a.mu.Lock()
	a.calls = append(a.calls, AttachCall{PID: pid, Agent: agent})
	a.mu.Unlock()
	a.once.Do(func() { close(a.started) })

	if a.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return a.err
}

// Started is closed once Attach has been entered.
func (a *Attacher) Started() <-chan struct{} {
	return a.started
}

// Calls returns the recorded invocations.
func (a *Attacher) Calls() []AttachCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AttachCall(nil), a.calls...)
}
