//go:build !linux || !cgo

// File: internal/ipc/sem_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for builds without cgo (CGO_ENABLED=0) or on platforms other than
// Linux. Named POSIX semaphores require libc; without cgo there is no
// syscall-only path to them, so this build tolerates the absence rather
// than faking semantics that would silently deadlock.

package ipc

import (
	"time"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
)

type Sem struct{}

func semRefByName(name string) *Sem { return &Sem{} }

func CreateSem(name string, initial uint, mode uint32) (*Sem, error) {
	return nil, api.ErrNotSupported
}

func OpenSem(name string) (*Sem, error) {
	return nil, api.ErrNotSupported
}

func (s *Sem) Wait(timeout time.Duration) error { return api.ErrNotSupported }
func (s *Sem) Post() error                      { return api.ErrNotSupported }
func (s *Sem) Close() error                     { return nil }
func (s *Sem) Unlink() error                    { return api.ErrNotSupported }
