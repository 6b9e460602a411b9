// File: codec/json_codec.go
// Author: momentics <momentics@gmail.com>
//
// JSON is the assumed wire format per §1/§4.3 ("any byte-preserving codec
// suffices"); this is the one concrete implementation. Values round-trip
// through encoding/json's native any representation: every number decodes
// as float64 (IEEE-754 double precision), including integral values, which
// are not decoded as a separate integer type; everything else decodes as
// the obvious Go equivalent.

package codec

import (
	"bytes"
	"encoding/json"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
)

// Codec is the bidirectional mapping between Request/Response records and
// the byte sequence the transport frames, per §4.3.
type Codec interface {
	EncodeRequest(Request) ([]byte, error)
	DecodeRequest([]byte) (Request, error)
	EncodeResponse(Response) ([]byte, error)
	DecodeResponse([]byte) (Response, error)
}

// JSONCodec is the default Codec implementation.
type JSONCodec struct{}

// NewJSONCodec constructs the default codec.
func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (JSONCodec) EncodeRequest(r Request) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, api.Wrap(api.KindSerialization, "encode request", err)
	}
	return b, nil
}

func (JSONCodec) DecodeRequest(data []byte) (Request, error) {
	var r Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Request{}, api.Wrap(api.KindSerialization, "decode request", err)
	}
	return r, nil
}

func (JSONCodec) EncodeResponse(r Response) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, api.Wrap(api.KindSerialization, "encode response", err)
	}
	return b, nil
}

func (JSONCodec) DecodeResponse(data []byte) (Response, error) {
	var r Response
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Response{}, api.Wrap(api.KindSerialization, "decode response", err)
	}
	return r, nil
}
