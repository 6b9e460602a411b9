// Package server implements the RPC server side of §4.5: a creator-role
// Transport, a name→method registry, and a single-threaded dispatch loop.
package server
