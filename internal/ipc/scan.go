//go:build linux

// File: internal/ipc/scan.go
// Author: momentics <momentics@gmail.com>
//
// Crash-recovery support for §5/§6: kernel-persistent shm segments and
// named semaphores both happen to live under /dev/shm on Linux (glibc's
// own sem_open implementation stores a semaphore's backing page at
// /dev/shm/sem.<name>), so a single directory scan finds every object
// belonging to a channel name prefix without guessing at kernel internals.

package ipc

import (
	"os"
	"path/filepath"
	"strings"
)

// ObjectKind distinguishes a shared-memory segment from a named semaphore
// when listing or unlinking stale IPC objects.
type ObjectKind string

const (
	KindShm ObjectKind = "shm"
	KindSem ObjectKind = "sem"
)

// StaleObject names one kernel-persistent object found on disk.
type StaleObject struct {
	Kind ObjectKind
	// Name is the bare object name as used by CreateShm/CreateSem (no
	// leading "/" or "sem." prefix).
	Name string
	// Path is the backing file under /dev/shm, for diagnostics.
	Path string
}

const semFilePrefix = "sem."

// Scan lists every shm segment and named semaphore under /dev/shm whose
// name starts with prefix. An empty prefix matches everything under
// /dev/shm, which callers should treat with care (§6: "must never touch
// non-matching objects" — an empty prefix is still every object matching
// zero characters, i.e. all of them, so cmd/shmrpc-cleanup requires an
// explicit --prefix rather than defaulting to "").
func Scan(prefix string) ([]StaleObject, error) {
	entries, err := os.ReadDir(shmDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []StaleObject
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fname := e.Name()
		if strings.HasPrefix(fname, semFilePrefix) {
			name := strings.TrimPrefix(fname, semFilePrefix)
			if strings.HasPrefix(name, prefix) {
				out = append(out, StaleObject{Kind: KindSem, Name: name, Path: filepath.Join(shmDir, fname)})
			}
			continue
		}
		if strings.HasPrefix(fname, prefix) {
			out = append(out, StaleObject{Kind: KindShm, Name: fname, Path: filepath.Join(shmDir, fname)})
		}
	}
	return out, nil
}

// Unlink removes a single stale object found by Scan, by kind.
func Unlink(obj StaleObject) error {
	switch obj.Kind {
	case KindShm:
		return (&Shm{name: obj.Name}).Unlink()
	case KindSem:
		return semRefByName(obj.Name).Unlink()
	default:
		return nil
	}
}
