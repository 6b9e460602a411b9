//go:build !linux

// File: internal/ipc/shm_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without a /dev/shm-backed POSIX shared
// memory facility. Cross-platform Windows support is an explicit Non-goal
// (§1); this file exists only so the package still builds on darwin/other
// unix variants during `go vet ./...` style tooling, returning a clear
// ErrNotSupported rather than silently doing the wrong thing.

package ipc

import (
	"os"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
)

type Shm struct{}

func CreateShm(name string, size int, mode os.FileMode) (*Shm, error) {
	return nil, api.ErrNotSupported
}

func OpenShm(name string, size int) (*Shm, error) {
	return nil, api.ErrNotSupported
}

func (s *Shm) Bytes() []byte { return nil }
func (s *Shm) Close() error  { return nil }
func (s *Shm) Unlink() error { return api.ErrNotSupported }
