// Package control
// Author: momentics <momentics@gmail.com>
//
// Process-level control layer of the console bridge.
//
// Provides concurrent-safe primitives including:
//   - Runtime counters with snapshot reads
//   - Exit hook registration ("run this before the process exits")
//   - The termination signal handler that fires the hooks
//   - The shutdown coordinator that stops the reactor and joins it
//
// This package is cross-platform.
package control
