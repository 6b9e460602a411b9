// File: rpc/client/client.go
// Author: momentics <momentics@gmail.com>
//
// Client composes an opener-role Transport with a Codec to make
// synchronous, correlated calls, per §4.4.

package client

import (
	"fmt"
	"sync"

	"github.com/rs/xid"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/codec"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/transport"
)

// Client makes synchronous, correlated calls over one opened channel.
type Client struct {
	mu     sync.Mutex
	tr     api.Transport
	codec  codec.Codec
	closed bool
}

// Open opens an existing channel (opener role) and returns a Client ready
// to make calls. The channel must already have been created by a server.
func Open(params api.ChannelParams) (*Client, error) {
	tr, err := transport.Open(params)
	if err != nil {
		return nil, err
	}
	return &Client{tr: tr, codec: codec.NewJSONCodec()}, nil
}

// Call makes one synchronous call, per §4.4's call(method, params) → value:
// generate a request id, send the request, receive and decode the
// response, verify correlation, and dispatch on the error field.
func (c *Client) Call(method string, params map[string]any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, api.New(api.KindState, "call on closed client")
	}

	requestID := xid.New().String()
	req := codec.Request{RequestID: requestID, Method: method, Params: params}

	data, err := c.codec.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	if err := c.tr.SendRequest(data); err != nil {
		return nil, err
	}

	respData, err := c.tr.ReceiveResponse()
	if err != nil {
		return nil, err
	}
	resp, err := c.codec.DecodeResponse(respData)
	if err != nil {
		return nil, err
	}

	if resp.RequestID != requestID {
		return nil, api.New(api.KindProtocol, fmt.Sprintf(
			"response id mismatch: sent %q, got %q", requestID, resp.RequestID)).
			WithContext("sent_request_id", requestID).
			WithContext("received_request_id", resp.RequestID)
	}
	if resp.Failed() {
		return nil, api.New(api.KindRemoteMethod, *resp.Error)
	}
	return resp.Result, nil
}

// Close releases the underlying transport. Idempotent; subsequent calls
// fail State.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.tr.Close()
}
