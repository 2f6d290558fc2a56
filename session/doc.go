// Package session implements the per-connection dispatcher described in
// spec.md §4.5: a single reader task that classifies every inbound
// message, replies to requests, drives image reassembly, and completes
// the controller's pending text/image ACK waits — paired with the
// single outbound writer and keepalive tasks spec.md §5 requires share
// the connection's encrypted transport.
package session
