//go:build linux && cgo

// File: internal/ipc/sem_linux.go
// Author: momentics <momentics@gmail.com>
//
// POSIX named counting semaphores have no raw-syscall equivalent on
// Linux: glibc's sem_open/sem_post/sem_timedwait/sem_unlink are userspace
// wrappers around internal futex state, not wrappers around a single
// kernel entry point a pure-Go program can replicate with golang.org/x/sys
// alone. Unlike shm_linux.go (where /dev/shm is a plain file underneath),
// there is no shortcut here — this is the one file in the module that
// goes through cgo, isolated behind its own build tag so the rest of the
// tree stays exactly as syscall-direct as the teacher's transport layer.

package ipc

/*
#include <semaphore.h>
#include <errno.h>
#include <stdlib.h>
#include <fcntl.h>
#include <time.h>
#include <math.h>

static sem_t *shmrpc_sem_create(const char *name, unsigned int value, mode_t mode, int *err_out) {
	sem_t *s = sem_open(name, O_CREAT | O_EXCL, mode, value);
	if (s == SEM_FAILED) {
		*err_out = errno;
		return NULL;
	}
	*err_out = 0;
	return s;
}

static sem_t *shmrpc_sem_open(const char *name, int *err_out) {
	sem_t *s = sem_open(name, 0);
	if (s == SEM_FAILED) {
		*err_out = errno;
		return NULL;
	}
	*err_out = 0;
	return s;
}

// has_timeout == 0 means block indefinitely; timeout_seconds <= 0 with
// has_timeout != 0 means a non-blocking trywait, per §4.1 "Timeout 0 means
// non-blocking".
static int shmrpc_sem_wait(sem_t *s, double timeout_seconds, int has_timeout) {
	if (!has_timeout) {
		return sem_wait(s);
	}
	if (timeout_seconds <= 0) {
		return sem_trywait(s);
	}
	struct timespec ts;
	clock_gettime(CLOCK_REALTIME, &ts);
	double whole;
	double frac = modf(timeout_seconds, &whole);
	ts.tv_sec += (time_t)whole;
	ts.tv_nsec += (long)(frac * 1e9);
	if (ts.tv_nsec >= 1000000000L) {
		ts.tv_nsec -= 1000000000L;
		ts.tv_sec += 1;
	}
	return sem_timedwait(s, &ts);
}
*/
import "C"

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
)

// Sem is a POSIX named counting semaphore, identified by /<name>.
type Sem struct {
	name string
	ptr  *C.sem_t
}

func semName(name string) (*C.char, func()) {
	cname := C.CString("/" + name)
	return cname, func() { C.free(unsafe.Pointer(cname)) }
}

// CreateSem creates a new named semaphore with the given initial count.
// Fails AlreadyExists if a semaphore with that name is already present.
func CreateSem(name string, initial uint, mode uint32) (*Sem, error) {
	cname, free := semName(name)
	defer free()

	var errOut C.int
	ptr := C.shmrpc_sem_create(cname, C.uint(initial), C.mode_t(mode), &errOut)
	if ptr == nil {
		if syscall.Errno(errOut) == syscall.EEXIST {
			return nil, api.ErrAlreadyExists
		}
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("sem_open create %q", name), syscall.Errno(errOut))
	}
	return &Sem{name: name, ptr: ptr}, nil
}

// OpenSem opens an existing named semaphore. Fails NotFound if absent.
func OpenSem(name string) (*Sem, error) {
	cname, free := semName(name)
	defer free()

	var errOut C.int
	ptr := C.shmrpc_sem_open(cname, &errOut)
	if ptr == nil {
		if syscall.Errno(errOut) == syscall.ENOENT {
			return nil, api.Wrap(api.KindTransport, fmt.Sprintf("sem_open %q", name), api.ErrNotFound)
		}
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("sem_open %q", name), syscall.Errno(errOut))
	}
	return &Sem{name: name, ptr: ptr}, nil
}

// Wait blocks until the semaphore count is positive (decrementing it by
// one) or the timeout elapses. A negative timeout blocks indefinitely; a
// zero timeout is a non-blocking trywait. On expiry it returns an *api.Error
// of KindTimeout, never a state-corrupting partial effect.
func (s *Sem) Wait(timeout time.Duration) error {
	hasTimeout := C.int(1)
	secs := C.double(timeout.Seconds())
	if timeout < 0 {
		hasTimeout = 0
	}
	rc, errno := C.shmrpc_sem_wait(s.ptr, secs, hasTimeout)
	if rc == 0 {
		return nil
	}
	if errno == syscall.ETIMEDOUT || errno == syscall.EAGAIN {
		return api.New(api.KindTimeout, fmt.Sprintf("sem wait %q timed out after %s", s.name, timeout))
	}
	return api.Wrap(api.KindTransport, fmt.Sprintf("sem wait %q", s.name), errno)
}

// Post increments the semaphore count, waking at most one waiter.
func (s *Sem) Post() error {
	if rc, errno := C.sem_post(s.ptr); rc != 0 {
		return api.Wrap(api.KindTransport, fmt.Sprintf("sem post %q", s.name), errno)
	}
	return nil
}

// Close closes this process's handle to the semaphore without removing it.
func (s *Sem) Close() error {
	if s == nil || s.ptr == nil {
		return nil
	}
	ptr := s.ptr
	s.ptr = nil
	if rc, errno := C.sem_close(ptr); rc != 0 {
		return api.Wrap(api.KindTransport, fmt.Sprintf("sem close %q", s.name), errno)
	}
	return nil
}

// semRefByName builds a handle-less Sem usable only for Unlink, for the
// crash-recovery scanner in scan.go which never opened the semaphore.
func semRefByName(name string) *Sem { return &Sem{name: name} }

// Unlink removes the named semaphore from the system. Only the creator
// should call this.
func (s *Sem) Unlink() error {
	if s == nil {
		return nil
	}
	cname, free := semName(s.name)
	defer free()
	if rc, errno := C.sem_unlink(cname); rc != 0 {
		if errno == syscall.ENOENT {
			return nil
		}
		return api.Wrap(api.KindTransport, fmt.Sprintf("sem unlink %q", s.name), errno)
	}
	return nil
}
