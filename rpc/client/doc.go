// Package client implements the RPC client side of §4.4: a synchronous,
// correlated call() built on an opener-role Transport and a Codec.
package client
