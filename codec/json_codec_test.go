package codec_test

import (
	"testing"

	"github.com/nunoatgithub/shm-rpc-bridge/codec"
)

func TestRequestRoundTrip(t *testing.T) {
	c := codec.NewJSONCodec()
	req := codec.Request{RequestID: "abc123", Method: "add", Params: map[string]any{"a": 5.0, "b": 3.0}}

	data, err := c.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	got, err := c.DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.RequestID != req.RequestID || got.Method != req.Method {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, req)
	}
	if got.Params["a"] != 5.0 || got.Params["b"] != 3.0 {
		t.Fatalf("params mismatch: %+v", got.Params)
	}
}

func TestResponseRoundTripSuccess(t *testing.T) {
	c := codec.NewJSONCodec()
	resp := codec.NewSuccessResponse("req-1", 8.0)

	data, err := c.EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	got, err := c.DecodeResponse(data)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if got.Failed() {
		t.Fatalf("expected success response, got error %v", *got.Error)
	}
	if got.Result != 8.0 {
		t.Fatalf("result mismatch: got %v", got.Result)
	}
}

func TestResponseRoundTripError(t *testing.T) {
	c := codec.NewJSONCodec()
	resp := codec.NewErrorResponse("req-2", "RemoteMethod: Division by zero")

	data, err := c.EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	got, err := c.DecodeResponse(data)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if !got.Failed() {
		t.Fatalf("expected failed response")
	}
	if *got.Error != "RemoteMethod: Division by zero" {
		t.Fatalf("error mismatch: got %q", *got.Error)
	}
}

func TestDecodeRequestRejectsUnknownFields(t *testing.T) {
	c := codec.NewJSONCodec()
	_, err := c.DecodeRequest([]byte(`{"request_id":"x","method":"add","params":{},"bogus":1}`))
	if err == nil {
		t.Fatalf("expected decode failure on unknown field")
	}
}

func TestDecodeParamsExtractsAndValidates(t *testing.T) {
	type addParams struct {
		A float64 `mapstructure:"a" validate:"required"`
		B float64 `mapstructure:"b"`
	}
	var p addParams
	if err := codec.DecodeParams(map[string]any{"a": 5.0, "b": 3.0}, &p); err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if p.A != 5.0 || p.B != 3.0 {
		t.Fatalf("decoded mismatch: %+v", p)
	}
}

func TestDecodeParamsMissingRequired(t *testing.T) {
	type addParams struct {
		A float64 `mapstructure:"a" validate:"required"`
	}
	var p addParams
	if err := codec.DecodeParams(map[string]any{}, &p); err == nil {
		t.Fatalf("expected error for missing required param")
	}
}
