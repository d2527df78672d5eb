// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements the bridge's socket layer directly on file
// descriptors: a non-blocking listener bound to localhost and the single
// accepted peer, configured with a short linger, TCP_NODELAY and a small
// send buffer. Descriptors are exposed so the reactor can watch them.
package tcp
