package server_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/control"
	"github.com/nunoatgithub/shm-rpc-bridge/rpc/client"
	"github.com/nunoatgithub/shm-rpc-bridge/rpc/server"
)

func testChannelName(t *testing.T) string {
	return fmt.Sprintf("shmrpc_server_test_%s_%d", t.Name(), time.Now().UnixNano())
}

// TestAddScenario covers §8 end-to-end scenario 1.
func TestAddScenario(t *testing.T) {
	name := testChannelName(t)
	s, err := server.New(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Register("add", func(params map[string]any) (any, error) {
		a, _ := api.Float64(params["a"])
		b, _ := api.Float64(params["b"])
		return a + b, nil
	})

	go s.Start()
	defer s.Close()

	c, err := client.Open(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	result, err := c.Call("add", map[string]any{"a": 5.0, "b": 3.0})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != 8.0 {
		t.Fatalf("result mismatch: got %v", result)
	}
}

// TestDivideByZeroScenario covers §8 end-to-end scenario 2.
func TestDivideByZeroScenario(t *testing.T) {
	name := testChannelName(t)
	s, err := server.New(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Register("divide", func(params map[string]any) (any, error) {
		a, _ := api.Float64(params["a"])
		b, _ := api.Float64(params["b"])
		if b == 0 {
			return nil, fmt.Errorf("Division by zero")
		}
		return a / b, nil
	})

	go s.Start()
	defer s.Close()

	c, err := client.Open(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, err = c.Call("divide", map[string]any{"a": 10.0, "b": 0.0})
	if !api.IsKind(err, api.KindRemoteMethod) {
		t.Fatalf("want RemoteMethod, got %v", err)
	}
	apiErr := err.(*api.Error)
	if want := "Division by zero"; !strings.Contains(apiErr.Message, want) {
		t.Fatalf("message %q does not contain %q", apiErr.Message, want)
	}
}

// TestUnknownMethodScenario covers §8 end-to-end scenario 3.
func TestUnknownMethodScenario(t *testing.T) {
	name := testChannelName(t)
	s, err := server.New(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	go s.Start()
	defer s.Close()

	c, err := client.Open(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, err = c.Call("nope", nil)
	if !api.IsKind(err, api.KindRemoteMethod) {
		t.Fatalf("want RemoteMethod, got %v", err)
	}
	apiErr := err.(*api.Error)
	if want := "Unknown method"; !strings.Contains(apiErr.Message, want) {
		t.Fatalf("message %q does not contain %q", apiErr.Message, want)
	}
}

// TestAccumulatorScenario covers §8 end-to-end scenario 4: a stateful
// server holding totals in its own address space across calls.
func TestAccumulatorScenario(t *testing.T) {
	name := testChannelName(t)
	s, err := server.New(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	totals := make(map[string]float64)
	s.Register("accumulate", func(params map[string]any) (any, error) {
		key, _ := api.String(params["key"])
		amount, _ := api.Float64(params["amount"])
		totals[key] += amount
		return totals[key], nil
	})
	s.Register("clear", func(params map[string]any) (any, error) {
		key, _ := api.String(params["key"])
		delete(totals, key)
		return nil, nil
	})

	go s.Start()
	defer s.Close()

	c, err := client.Open(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	steps := []struct {
		method string
		params map[string]any
		want   any
	}{
		{"accumulate", map[string]any{"key": "alice", "amount": 10.0}, 10.0},
		{"accumulate", map[string]any{"key": "bob", "amount": 7.5}, 7.5},
		{"accumulate", map[string]any{"key": "alice", "amount": 5.0}, 15.0},
		{"clear", map[string]any{"key": "alice"}, nil},
		{"accumulate", map[string]any{"key": "alice", "amount": 1.25}, 1.25},
		{"accumulate", map[string]any{"key": "bob", "amount": 1.0}, 8.5},
	}
	for i, step := range steps {
		got, err := c.Call(step.method, step.params)
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, step.method, err)
		}
		if step.want != nil && got != step.want {
			t.Fatalf("step %d (%s): got %v want %v", i, step.method, got, step.want)
		}
	}
}

// TestProbeStatus covers the §4.5 status() probe via a second transport.
func TestProbeStatus(t *testing.T) {
	name := testChannelName(t)
	s, err := server.New(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	go s.Start()
	defer s.Close()

	running, err := server.Probe(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !running {
		t.Fatalf("expected running=true")
	}
}

// TestMetricsRecordCallsAndErrors verifies the server records a call on
// success and an error on an unknown method through an attached registry.
func TestMetricsRecordCallsAndErrors(t *testing.T) {
	name := testChannelName(t)
	s, err := server.New(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reg := prometheus.NewRegistry()
	mr := control.NewMetricsRegistry(reg)
	s.SetMetrics(mr)
	s.Register("add", func(params map[string]any) (any, error) {
		a, _ := api.Float64(params["a"])
		b, _ := api.Float64(params["b"])
		return a + b, nil
	})

	go s.Start()
	defer s.Close()

	c, err := client.Open(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, err := c.Call("add", map[string]any{"a": 1.0, "b": 2.0}); err != nil {
		t.Fatalf("Call add: %v", err)
	}
	if _, err := c.Call("nope", nil); !api.IsKind(err, api.KindRemoteMethod) {
		t.Fatalf("Call nope: want RemoteMethod, got %v", err)
	}

	if got := testutil.ToFloat64(mr.CallsTotal.WithLabelValues("add")); got != 1 {
		t.Fatalf("CallsTotal[add]: got %v want 1", got)
	}
	if got := testutil.ToFloat64(mr.ErrorsTotal.WithLabelValues(api.KindRemoteMethod.String())); got != 1 {
		t.Fatalf("ErrorsTotal[RemoteMethod]: got %v want 1", got)
	}
}

// TestDebugProbesReportRegisteredMethods exercises the Debug() probe
// wiring added from the control package.
func TestDebugProbesReportRegisteredMethods(t *testing.T) {
	name := testChannelName(t)
	s, err := server.New(api.ChannelParams{Name: name, BufferSize: 256, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	s.Register("add", func(map[string]any) (any, error) { return nil, nil })

	state := s.Debug().DumpState()
	methods, ok := state["registered_methods"].([]string)
	if !ok {
		t.Fatalf("registered_methods probe missing or wrong type: %#v", state["registered_methods"])
	}
	found := false
	for _, m := range methods {
		if m == "add" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'add' among registered methods, got %v", methods)
	}
}
