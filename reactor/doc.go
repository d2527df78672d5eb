// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness reactor used by the console bridge:
// a small set of watched descriptors, each carrying an interest mask of
// accept, read and write, polled with a bounded wait. Linux uses epoll in
// level-triggered mode; other platforms report ErrNotSupported.
package reactor
