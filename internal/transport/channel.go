// File: internal/transport/channel.go
// Author: momentics <momentics@gmail.com>
//
// channel implements api.Transport: a named channel resolving to six
// kernel objects (§3) with create (server/creator) and open (client/
// opener) constructors. Each direction's (wait, read-or-write, post)
// sequence is serialized by its own mutex so that Close cannot race a
// concurrent Wait on its own semaphores (§4.2, §5) while leaving the
// other direction free to proceed independently.

package transport

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/ipc"
)

const kernelObjectMode = 0600

type channel struct {
	name       string
	bufferSize int
	timeout    time.Duration
	isCreator  bool

	reqShm  *ipc.Shm
	respShm *ipc.Shm

	reqEmpty, reqFull   *ipc.Sem
	respEmpty, respFull *ipc.Sem

	reqMu, respMu sync.Mutex

	closeMu sync.Mutex
	closed  bool
}

// Create allocates both shm segments and all four semaphores with
// exclusive-create semantics, maps the segments, and returns a channel in
// the creator (server) role. On any failure, whatever was already created
// is torn down before returning.
func Create(params api.ChannelParams) (api.Transport, error) {
	if params.BufferSize <= api.HeaderSize {
		return nil, api.New(api.KindTransport,
			fmt.Sprintf("buffer_size %d too small: must exceed header size %d", params.BufferSize, api.HeaderSize))
	}

	c := &channel{name: params.Name, bufferSize: params.BufferSize, timeout: params.Timeout, isCreator: true}

	var err error
	if c.reqShm, err = ipc.CreateShm(reqShmName(params.Name), params.BufferSize, os.FileMode(kernelObjectMode)); err != nil {
		return nil, wrapCreate("request shm", err)
	}
	if c.respShm, err = ipc.CreateShm(respShmName(params.Name), params.BufferSize, os.FileMode(kernelObjectMode)); err != nil {
		c.teardownPartial()
		return nil, wrapCreate("response shm", err)
	}
	if c.reqEmpty, err = ipc.CreateSem(reqEmptySemName(params.Name), 1, kernelObjectMode); err != nil {
		c.teardownPartial()
		return nil, wrapCreate("req_empty sem", err)
	}
	if c.reqFull, err = ipc.CreateSem(reqFullSemName(params.Name), 0, kernelObjectMode); err != nil {
		c.teardownPartial()
		return nil, wrapCreate("req_full sem", err)
	}
	if c.respEmpty, err = ipc.CreateSem(respEmptySemName(params.Name), 1, kernelObjectMode); err != nil {
		c.teardownPartial()
		return nil, wrapCreate("resp_empty sem", err)
	}
	if c.respFull, err = ipc.CreateSem(respFullSemName(params.Name), 0, kernelObjectMode); err != nil {
		c.teardownPartial()
		return nil, wrapCreate("resp_full sem", err)
	}
	return c, nil
}

// Open opens both shm segments and all four semaphores, which must
// already exist, and maps the segments, returning a channel in the opener
// (client) role. buffer_size must equal the creator's.
func Open(params api.ChannelParams) (api.Transport, error) {
	c := &channel{name: params.Name, bufferSize: params.BufferSize, timeout: params.Timeout, isCreator: false}

	var err error
	if c.reqShm, err = ipc.OpenShm(reqShmName(params.Name), params.BufferSize); err != nil {
		return nil, wrapOpen("request shm", err)
	}
	if c.respShm, err = ipc.OpenShm(respShmName(params.Name), params.BufferSize); err != nil {
		c.closeHandlesOnly()
		return nil, wrapOpen("response shm", err)
	}
	if c.reqEmpty, err = ipc.OpenSem(reqEmptySemName(params.Name)); err != nil {
		c.closeHandlesOnly()
		return nil, wrapOpen("req_empty sem", err)
	}
	if c.reqFull, err = ipc.OpenSem(reqFullSemName(params.Name)); err != nil {
		c.closeHandlesOnly()
		return nil, wrapOpen("req_full sem", err)
	}
	if c.respEmpty, err = ipc.OpenSem(respEmptySemName(params.Name)); err != nil {
		c.closeHandlesOnly()
		return nil, wrapOpen("resp_empty sem", err)
	}
	if c.respFull, err = ipc.OpenSem(respFullSemName(params.Name)); err != nil {
		c.closeHandlesOnly()
		return nil, wrapOpen("resp_full sem", err)
	}
	return c, nil
}

func reqShmName(n string) string       { return n + "_request" }
func respShmName(n string) string      { return n + "_response" }
func reqEmptySemName(n string) string  { return n + "_req_empty" }
func reqFullSemName(n string) string   { return n + "_req_full" }
func respEmptySemName(n string) string { return n + "_resp_empty" }
func respFullSemName(n string) string  { return n + "_resp_full" }

func wrapCreate(what string, err error) error {
	return api.Wrap(api.KindTransport, "create "+what, err)
}
func wrapOpen(what string, err error) error {
	return api.Wrap(api.KindTransport, "open "+what, err)
}

// SendRequest implements api.Transport.
func (c *channel) SendRequest(data []byte) error {
	return c.send(&c.reqMu, c.reqEmpty, c.reqFull, c.reqShm, data)
}

// ReceiveRequest implements api.Transport.
func (c *channel) ReceiveRequest() ([]byte, error) {
	return c.receive(&c.reqMu, c.reqFull, c.reqEmpty, c.reqShm)
}

// SendResponse implements api.Transport.
func (c *channel) SendResponse(data []byte) error {
	return c.send(&c.respMu, c.respEmpty, c.respFull, c.respShm, data)
}

// ReceiveResponse implements api.Transport.
func (c *channel) ReceiveResponse() ([]byte, error) {
	return c.receive(&c.respMu, c.respFull, c.respEmpty, c.respShm)
}

// send implements the producer side of one direction's single-slot ring:
// validate size, wait(empty), write, post(full). The size check happens
// before any semaphore operation, per §4.2 step 1.
func (c *channel) send(mu *sync.Mutex, empty, full *ipc.Sem, shm *ipc.Shm, data []byte) error {
	if c.isClosed() {
		return api.New(api.KindState, "transport is closed")
	}
	maxPayload := api.MaxPayload(c.bufferSize)
	if len(data) > maxPayload {
		return api.New(api.KindTransport,
			fmt.Sprintf("payload too large: %d exceeds max %d", len(data), maxPayload))
	}

	mu.Lock()
	defer mu.Unlock()
	if c.isClosed() {
		return api.New(api.KindState, "transport is closed")
	}

	if err := empty.Wait(c.timeout); err != nil {
		return err
	}
	writeFrame(shm.Bytes(), data)
	if err := full.Post(); err != nil {
		return err
	}
	return nil
}

// receive implements the consumer side: wait(full), read, post(empty).
func (c *channel) receive(mu *sync.Mutex, full, empty *ipc.Sem, shm *ipc.Shm) ([]byte, error) {
	if c.isClosed() {
		return nil, api.New(api.KindState, "transport is closed")
	}

	mu.Lock()
	defer mu.Unlock()
	if c.isClosed() {
		return nil, api.New(api.KindState, "transport is closed")
	}

	if err := full.Wait(c.timeout); err != nil {
		return nil, err
	}
	out, err := readFrame(shm.Bytes())
	if err != nil {
		return nil, err
	}
	if postErr := empty.Post(); postErr != nil {
		return nil, postErr
	}
	return out, nil
}

func (c *channel) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

// IsCreator implements api.Transport.
func (c *channel) IsCreator() bool { return c.isCreator }

// Close unmaps both regions and closes all four semaphore handles; if the
// channel is the creator, it additionally unlinks the six kernel objects.
// Idempotent and safe to call from a signal handler after a graceful stop.
// Acquiring both direction mutexes here ensures Close cannot unlink a
// semaphore a concurrent Wait on the same process is blocked in (§4.2,
// §5); it will instead wait for that Wait to return (on post or timeout)
// before proceeding.
func (c *channel) Close() error {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return nil
	}
	c.closed = true
	c.closeMu.Unlock()

	c.reqMu.Lock()
	c.respMu.Lock()
	defer c.reqMu.Unlock()
	defer c.respMu.Unlock()

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(c.reqShm.Close())
	record(c.respShm.Close())
	record(c.reqEmpty.Close())
	record(c.reqFull.Close())
	record(c.respEmpty.Close())
	record(c.respFull.Close())

	if c.isCreator {
		record(c.reqShm.Unlink())
		record(c.respShm.Unlink())
		record(c.reqEmpty.Unlink())
		record(c.reqFull.Unlink())
		record(c.respEmpty.Unlink())
		record(c.respFull.Unlink())
	}
	return firstErr
}

// teardownPartial is used by Create when a later kernel object fails to
// allocate: it tears down whatever was already created, as the creator.
func (c *channel) teardownPartial() {
	c.isCreator = true
	_ = c.Close()
}

// closeHandlesOnly is used by Open when a later kernel object fails to
// open: the opener never unlinks, it only releases what it already holds.
func (c *channel) closeHandlesOnly() {
	c.isCreator = false
	_ = c.Close()
}
