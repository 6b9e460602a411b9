// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
//
// Shared-memory transport layer: two fixed-size mapped regions plus four
// counting semaphores forming two single-slot producer-consumer rings, per
// §3/§4.2. Built entirely on internal/ipc; owns kernel-object lifecycle.
package transport
