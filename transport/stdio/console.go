// File: transport/stdio/console.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Operator console endpoint: availability-checked input, flushed output.

// Package stdio adapts the process's standard streams to api.Console.
package stdio

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/momentics/consolebridge/api"
)

// Console relays bytes between the bridge and the operator's terminal.
// Input is only ever read after Available reported it, so a read never
// blocks the reactor.
type Console struct {
	in   *os.File
	inFd int
	out  *bufio.Writer

	mu         sync.Mutex
	unpollable bool
}

var _ api.Console = (*Console)(nil)

// New binds a console to the given streams.
func New(in *os.File, out io.Writer) *Console {
	return &Console{
		in:   in,
		inFd: int(in.Fd()),
		out:  bufio.NewWriter(out),
	}
}

// Std returns the console bound to stdin and stdout.
func Std() *Console {
	return New(os.Stdin, os.Stdout)
}

// Read consumes console input.
func (c *Console) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

// Write emits p verbatim and flushes it.
func (c *Console) Write(p []byte) (int, error) {
	n, err := c.out.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.out.Flush()
}

// Pollable reports whether input availability can be queried at all.
// A console whose input is, for example, /dev/null never offers input.
func (c *Console) Pollable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.unpollable
}
