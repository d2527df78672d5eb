// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

// PeerState enumerates the single-peer lifecycle of a bridge run.
type PeerState int

const (
	PeerAwaiting PeerState = iota
	PeerServing
	PeerGone
)

func (s PeerState) String() string {
	switch s {
	case PeerAwaiting:
		return "awaiting-peer"
	case PeerServing:
		return "serving-peer"
	case PeerGone:
		return "peer-gone"
	default:
		return "unknown"
	}
}

// QuitMessage is the only protocol-level convention on the wire: the remote
// agent interprets it as a request to terminate.
const QuitMessage = "quit\n"

// Metric keys reported by the bridge.
const (
	MetricPeerAccepted   = "peer.accepted"
	MetricPeerBytesIn    = "peer.bytes_in"
	MetricPeerBytesOut   = "peer.bytes_out"
	MetricConsoleBytesIn = "console.bytes_in"
	MetricQuitSent       = "quit.sent"
	MetricLoopIterations = "loop.iterations"
)
