// File: server/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package server implements the console bridge: a single-goroutine readiness
// loop that accepts exactly one remote agent on a localhost port and relays
// raw bytes between it and the operator console.
//
// The loop owns every socket. The only state crossing goroutines is the
// one-shot stop request (RequestStop) and the exit notification (Wait,
// Done). Once a stop request is observed the bridge stops forwarding
// console input and answers every write opportunity with "quit\n" until
// the agent disconnects.
package server
