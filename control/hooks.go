// control/hooks.go
// Registration API for callbacks that must run before the process exits.

package control

import (
	"sync"

	"github.com/rs/zerolog"
)

// ExitHooks collects callbacks run once, in registration order, when the
// process is asked to terminate.
type ExitHooks struct {
	mu     sync.Mutex
	hooks  []func()
	ran    bool
	logger zerolog.Logger
}

// NewExitHooks returns an empty registry. Hook panics are logged to logger.
func NewExitHooks(logger zerolog.Logger) *ExitHooks {
	return &ExitHooks{logger: logger}
}

// Register adds a hook. Hooks registered after Run are never invoked.
func (h *ExitHooks) Register(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// Run invokes all hooks synchronously. Only the first call does anything;
// it reports whether this call ran them.
func (h *ExitHooks) Run() bool {
	h.mu.Lock()
	if h.ran {
		h.mu.Unlock()
		return false
	}
	h.ran = true
	hooks := append([]func(){}, h.hooks...)
	h.mu.Unlock()

	for _, fn := range hooks {
		h.invoke(fn)
	}
	return true
}

// invoke keeps a panicking hook from skipping the ones after it.
func (h *ExitHooks) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Msg("exit hook panicked")
		}
	}()
	fn()
}
