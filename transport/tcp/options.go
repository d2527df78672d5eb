// File: transport/tcp/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

// PeerOptions configures every accepted peer socket.
type PeerOptions struct {
	// LingerSeconds enables SO_LINGER with this grace period. Negative disables it.
	LingerSeconds int
	// NoDelay disables write coalescing (TCP_NODELAY).
	NoDelay bool
	// SendBufferSize is the SO_SNDBUF hint. Zero keeps the kernel default.
	SendBufferSize int
}

// DefaultPeerOptions returns the settings the bridge runs with.
func DefaultPeerOptions() PeerOptions {
	return PeerOptions{
		LingerSeconds:  1,
		NoDelay:        true,
		SendBufferSize: 4096,
	}
}

// listenBacklog bounds pending connections; only the first is ever accepted.
const listenBacklog = 4
