// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control exposes runtime counters of a bridge run.
type Control interface {
	Add(key string, delta int64)
	Stats() map[string]int64
}
