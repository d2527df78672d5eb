// File: api/shutdown.go
// Package api defines the cooperative shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "time"

// Stoppable is a background worker that accepts a one-shot stop request
// and can be joined with a bounded wait.
type Stoppable interface {
	// RequestStop delivers the stop request. Repeated calls are no-ops.
	RequestStop()

	// Wait blocks up to timeout and reports whether the worker has exited.
	Wait(timeout time.Duration) bool
}
