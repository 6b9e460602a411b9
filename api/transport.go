// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the shared-memory transport abstraction (Transport) that
// internal/transport implements on top of internal/ipc and that
// rpc/client and rpc/server compose.

package api

import "time"

// Transport is the framed, synchronized, bounded message channel described
// in §4.2. A Transport is constructed once in either the creator (server)
// or opener (client) role and exposes the four byte-oriented operations
// needed to carry one request and one response per call.
type Transport interface {
	// SendRequest frames and writes data into the request slot, blocking
	// on req_empty up to the configured timeout.
	SendRequest(data []byte) error
	// ReceiveRequest blocks on req_full up to the configured timeout and
	// returns the framed payload, or a Timeout error if none arrives.
	ReceiveRequest() ([]byte, error)
	// SendResponse frames and writes data into the response slot,
	// blocking on resp_empty up to the configured timeout.
	SendResponse(data []byte) error
	// ReceiveResponse blocks on resp_full up to the configured timeout
	// and returns the framed payload.
	ReceiveResponse() ([]byte, error)
	// Close unmaps both regions and closes all four semaphore handles.
	// If the Transport is the creator, Close additionally unlinks the
	// six kernel objects. Idempotent.
	Close() error
	// IsCreator reports whether this endpoint created the channel's
	// kernel objects (server role) rather than opened them (client role).
	IsCreator() bool
}

// ChannelParams is the full set of parameters needed to create or open a
// channel — only buffer_size and timeout are wire-relevant per §6; name
// selects the six kernel objects per §3.
type ChannelParams struct {
	Name       string
	BufferSize int
	Timeout    time.Duration
}

// HeaderSize is the fixed length prefix (bytes 0..3, little-endian uint32)
// preceding the payload in every mapped region, per §3.
const HeaderSize = 4

// MaxPayload returns the maximum payload length a region of the given
// buffer size can carry.
func MaxPayload(bufferSize int) int {
	if bufferSize < HeaderSize {
		return 0
	}
	return bufferSize - HeaderSize
}
