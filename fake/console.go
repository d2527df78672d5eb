// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the bridge's collaborators.

package fake

import (
	"bytes"
	"sync"

	"github.com/momentics/consolebridge/api"
)

// Console is an in-memory api.Console. Input fed by the test becomes
// available immediately; output is collected for inspection.
type Console struct {
	mu       sync.Mutex
	in       bytes.Buffer
	out      bytes.Buffer
	availErr error
	writeErr error
}

var _ api.Console = (*Console)(nil)

// NewConsole creates an empty console.
func NewConsole() *Console {
	return &Console{}
}

// Feed makes data available as console input.
func (c *Console) Feed(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.in.Write(data)
}

// Available implements api.Console.Available.
func (c *Console) Available() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.availErr != nil {
		return 0, c.availErr
	}
	return c.in.Len(), nil
}

// Read implements api.Console.Read.
func (c *Console) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.in.Read(p)
}

// Write implements api.Console.Write.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.out.Write(p)
}

// Output returns a copy of everything written so far.
func (c *Console) Output() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.out.Bytes())
}

// Pending returns the number of fed bytes not yet consumed.
func (c *Console) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.in.Len()
}

// SetAvailableError configures the console to fail availability checks.
func (c *Console) SetAvailableError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.availErr = err
}

// SetWriteError configures the console to fail writes.
func (c *Console) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}
