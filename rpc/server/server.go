// File: rpc/server/server.go
// Author: momentics <momentics@gmail.com>
//
// Server composes a creator-role Transport with a name→method registry
// and a single-threaded dispatch loop, per §4.5.

package server

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"time"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/codec"
	"github.com/nunoatgithub/shm-rpc-bridge/control"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/logging"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/transport"
	"github.com/nunoatgithub/shm-rpc-bridge/rpc/client"
)

// Method is a registered callable: it receives the request's named
// parameters and returns a result or an error. An error returned here is
// captured into the response's error field by the dispatch loop rather
// than propagating to the caller of start().
type Method func(params map[string]any) (any, error)

// Server holds a creator-role transport, a method registry, and the
// running flag driving handle_one() in a loop, per §4.5.
type Server struct {
	params api.ChannelParams

	mu      sync.Mutex
	tr      api.Transport
	codec   codec.Codec
	methods map[string]Method
	running bool
	status  api.ServerStatus
	sigCh   chan os.Signal
	sigOnce sync.Once
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
	logger  *logging.Logger
}

// New creates the channel's kernel objects (creator role) and returns a
// Server with "__running__" already registered. The logger defaults to
// WARNING until SetLogger is called with one built from the caller's own
// configuration.
func New(params api.ChannelParams) (*Server, error) {
	tr, err := transport.Create(params)
	if err != nil {
		return nil, err
	}
	s := &Server{
		params:  params,
		tr:      tr,
		codec:   codec.NewJSONCodec(),
		methods: make(map[string]Method),
		status:  api.StatusInitialized,
		debug:   control.NewDebugProbes(),
		logger:  logging.New(""),
	}
	s.Register(api.RunningProbeMethod, func(map[string]any) (any, error) {
		return true, nil
	})
	s.debug.RegisterProbe("status", func() any { return s.Status().String() })
	s.debug.RegisterProbe("registered_methods", func() any {
		s.mu.Lock()
		defer s.mu.Unlock()
		names := make([]string, 0, len(s.methods))
		for name := range s.methods {
			names = append(names, name)
		}
		return names
	})
	return s, nil
}

// SetMetrics attaches a Prometheus-backed metrics registry; every
// dispatch thereafter records call counts, error kinds, and latency
// through it. Passing nil restores the no-op default.
func (s *Server) SetMetrics(mr *control.MetricsRegistry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = mr
}

// SetLogger installs the logger used for the dispatch loop's own
// diagnostics (stop/signal/close messages), built by the caller from its
// own loaded configuration (internal/config.Config.LogLevel) rather than
// any package-level logging state.
func (s *Server) SetLogger(lg *logging.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = lg
}

// Debug exposes the server's registered debug probes as an api.Debug.
func (s *Server) Debug() api.Debug {
	return s.debug
}

// Register binds name to fn, overwriting any prior binding. Per §4.5,
// "__running__" is reserved and pre-registered by New; re-registering it
// is allowed (overwrite semantics apply uniformly) but discouraged.
func (s *Server) Register(name string, fn Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[name] = fn
}

// Start installs signal handlers, flips the running flag, and loops
// handleOne() until Close or a fatal dispatch error stops it. Start
// blocks until the loop exits and returns the error that stopped it, if
// any (nil on a clean Close).
func (s *Server) Start() error {
	s.mu.Lock()
	s.running = true
	s.status = api.StatusRunning
	s.mu.Unlock()

	s.installSignalHandler()

	for {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if !running {
			return nil
		}

		if err := s.handleOne(); err != nil {
			s.mu.Lock()
			if s.status == api.StatusClosed {
				s.mu.Unlock()
				return nil
			}
			s.status = api.StatusError
			s.running = false
			s.mu.Unlock()
			if apiErr, ok := err.(*api.Error); ok {
				s.metrics.RecordError(apiErr.Kind.String())
			}
			s.logger.Errorf("shmrpc: dispatch loop stopped: %v", err)
			return err
		}
	}
}

// handleOne implements the five steps of §4.5's handle_one().
func (s *Server) handleOne() error {
	start := time.Now()
	reqData, err := s.tr.ReceiveRequest()
	if api.IsKind(err, api.KindTimeout) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { s.metrics.ObserveDispatch(time.Since(start).Seconds()) }()

	req, decodeErr := s.codec.DecodeRequest(reqData)
	var resp codec.Response
	switch {
	case decodeErr != nil:
		s.metrics.RecordError(api.KindSerialization.String())
		resp = codec.NewErrorResponse("", fmt.Sprintf("Decode: %v", decodeErr))
	default:
		resp = s.dispatch(req)
	}

	respData, err := s.codec.EncodeResponse(resp)
	if err != nil {
		// A response that cannot be encoded is itself a Serialization
		// failure; fall back to an error response carrying that failure
		// so the client still receives something for its request_id.
		respData, err = s.codec.EncodeResponse(codec.NewErrorResponse(req.RequestID, fmt.Sprintf("Serialization: %v", err)))
		if err != nil {
			return err
		}
	}
	if err := s.tr.SendResponse(respData); err != nil {
		// A timeout sending the response means the peer isn't reading
		// its own side; this is fatal per §4.5 step 5.
		return err
	}
	return nil
}

func (s *Server) dispatch(req codec.Request) codec.Response {
	s.mu.Lock()
	fn, ok := s.methods[req.Method]
	s.mu.Unlock()
	s.metrics.RecordCall(req.Method)
	if !ok {
		s.metrics.RecordError(api.KindRemoteMethod.String())
		return codec.NewErrorResponse(req.RequestID, fmt.Sprintf("Unknown method: %s", req.Method))
	}

	result, err := fn(req.Params)
	if err != nil {
		s.metrics.RecordError(api.KindRemoteMethod.String())
		if apiErr, ok := err.(*api.Error); ok {
			return codec.NewErrorResponse(req.RequestID, fmt.Sprintf("%s: %s", apiErr.Kind, apiErr.Message))
		}
		return codec.NewErrorResponse(req.RequestID, fmt.Sprintf("RemoteMethod: %s", err.Error()))
	}
	return codec.NewSuccessResponse(req.RequestID, result)
}

// Status reports the server's current lifecycle state, per §4.6.
func (s *Server) Status() api.ServerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close stops the dispatch loop, closes the transport (unlinking all
// kernel objects as creator), and removes the signal handler. Idempotent.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.status == api.StatusClosed {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.status = api.StatusClosed
	tr := s.tr
	s.mu.Unlock()

	s.removeSignalHandler()
	return tr.Close()
}

// Probe answers whether a server is running on the named channel, from an
// external process that has no access to the server's internal state, by
// opening a short-lived second transport and issuing __running__ — the
// alternative status() implementation described in §4.5.
func Probe(params api.ChannelParams) (bool, error) {
	c, err := client.Open(params)
	if err != nil {
		return false, err
	}
	defer c.Close()

	result, err := c.Call(api.RunningProbeMethod, nil)
	if err != nil {
		return false, err
	}
	running, _ := api.Bool(result)
	return running, nil
}

func (s *Server) installSignalHandler() {
	s.sigOnce.Do(func() {
		s.sigCh = make(chan os.Signal, 1)
		signal.Notify(s.sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			if _, ok := <-s.sigCh; !ok {
				return
			}
			s.mu.Lock()
			lg := s.logger
			s.mu.Unlock()
			lg.Warningf("shmrpc: termination signal received, closing")
			if err := s.Close(); err != nil {
				lg.Errorf("shmrpc: close on signal: %v", err)
			}
		}()
	})
}

func (s *Server) removeSignalHandler() {
	s.mu.Lock()
	ch := s.sigCh
	s.mu.Unlock()
	if ch == nil {
		return
	}
	signal.Stop(ch)
	close(ch)
}
