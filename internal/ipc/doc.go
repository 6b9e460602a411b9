// File: internal/ipc/doc.go
// Package ipc
// Author: momentics <momentics@gmail.com>
//
// Thin adapter over POSIX named shared memory and POSIX named counting
// semaphores, per §4.1. Platform-specific files are strictly separated by
// build tags, the same way reactor/ and internal/transport/ split Linux
// from Windows in the wider hioload-ws tree: a Linux implementation (raw
// syscalls for shared memory, cgo into glibc for named semaphores), and
// stub files for non-Linux builds and for semaphores in builds without
// cgo, returning api.ErrNotSupported rather than silently degrading.
package ipc
