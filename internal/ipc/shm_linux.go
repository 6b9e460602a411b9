//go:build linux

// File: internal/ipc/shm_linux.go
// Author: momentics <momentics@gmail.com>
//
// POSIX named shared memory on Linux is backed by tmpfs at /dev/shm; this
// is how glibc's shm_open/shm_unlink are themselves implemented, so a
// regular os.OpenFile/os.Remove against that directory plus a raw mmap(2)
// reproduces the exact contract of §4.1 without cgo.

package ipc

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
)

const shmDir = "/dev/shm"

// Shm is a mapped POSIX shared-memory region.
type Shm struct {
	name string
	size int
	data []byte
}

func shmPath(name string) string {
	return filepath.Join(shmDir, name)
}

// CreateShm allocates a new shared-memory segment of the given size and
// maps it read/write. Fails AlreadyExists if the name is already taken.
func CreateShm(name string, size int, mode os.FileMode) (*Shm, error) {
	path := shmPath(name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		if os.IsExist(err) {
			return nil, api.ErrAlreadyExists
		}
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("shm create %q", name), err)
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		os.Remove(path)
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("shm truncate %q", name), err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("mmap %q", name), err)
	}
	return &Shm{name: name, size: size, data: data}, nil
}

// OpenShm opens an existing shared-memory segment and maps it read/write.
// Fails NotFound if it does not exist, or wraps a SizeMismatch-flavored
// Transport error when size exceeds the segment actually on disk.
func OpenShm(name string, size int) (*Shm, error) {
	path := shmPath(name)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, api.Wrap(api.KindTransport, fmt.Sprintf("shm open %q", name), api.ErrNotFound)
		}
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("shm open %q", name), err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("shm stat %q", name), err)
	}
	if st.Size() < int64(size) {
		return nil, api.New(api.KindTransport,
			fmt.Sprintf("shm %q size mismatch: want %d, have %d", name, size, st.Size()))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, api.Wrap(api.KindTransport, fmt.Sprintf("mmap %q", name), err)
	}
	return &Shm{name: name, size: size, data: data}, nil
}

// Bytes returns the mapped region. Valid until Close.
func (s *Shm) Bytes() []byte { return s.data }

// Close unmaps the region. The descriptor used to create the mapping was
// already closed right after mmap succeeded; the mapping alone keeps the
// segment valid, per §4.1's "Implementations may close the underlying
// descriptor after successful mapping".
func (s *Shm) Close() error {
	if s == nil || s.data == nil {
		return nil
	}
	data := s.data
	s.data = nil
	return unix.Munmap(data)
}

// Unlink removes the backing file by name. Only the creator should call
// this, per §3/§5 "creator-only unlinker".
func (s *Shm) Unlink() error {
	if s == nil {
		return nil
	}
	if err := os.Remove(shmPath(s.name)); err != nil && !os.IsNotExist(err) {
		return api.Wrap(api.KindTransport, fmt.Sprintf("shm unlink %q", s.name), err)
	}
	return nil
}
