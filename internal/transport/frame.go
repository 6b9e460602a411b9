// File: internal/transport/frame.go
// Author: momentics <momentics@gmail.com>
//
// Bytes 0..3 of a region are an unsigned 32-bit little-endian length
// prefix, bytes 4..(4+L) are the payload, per §3. This mirrors the framing
// style smux uses for its stream headers, adapted from a multi-stream
// frame to this single-slot, length-prefix-only layout (multiplexing is a
// Non-goal here, so there is no stream id or command byte to carry).

package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
)

// writeFrame writes data into buf starting at offset 0, preceded by its
// little-endian uint32 length. Caller has already validated
// len(data) <= len(buf)-api.HeaderSize.
func writeFrame(buf []byte, data []byte) {
	binary.LittleEndian.PutUint32(buf[:api.HeaderSize], uint32(len(data)))
	copy(buf[api.HeaderSize:], data)
}

// readFrame validates and copies the payload out of buf into a freshly
// owned slice, rejecting a header claiming more than the region can hold.
func readFrame(buf []byte) ([]byte, error) {
	if len(buf) < api.HeaderSize {
		return nil, api.New(api.KindTransport, "buffer too small for header")
	}
	length := binary.LittleEndian.Uint32(buf[:api.HeaderSize])
	maxPayload := api.MaxPayload(len(buf))
	if int64(length) > int64(maxPayload) {
		return nil, api.New(api.KindTransport,
			fmt.Sprintf("invalid message size: %d exceeds max payload %d", length, maxPayload))
	}
	out := make([]byte, length)
	copy(out, buf[api.HeaderSize:api.HeaderSize+length])
	return out, nil
}
