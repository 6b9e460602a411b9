//go:build !linux

// File: internal/ipc/scan_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux platforms have no /dev/shm convention to scan; the cleanup
// utility's discovery step is unsupported there.

package ipc

import "github.com/nunoatgithub/shm-rpc-bridge/api"

type ObjectKind string

const (
	KindShm ObjectKind = "shm"
	KindSem ObjectKind = "sem"
)

type StaleObject struct {
	Kind ObjectKind
	Name string
	Path string
}

func Scan(prefix string) ([]StaleObject, error) {
	return nil, api.ErrNotSupported
}

func Unlink(obj StaleObject) error {
	return api.ErrNotSupported
}
