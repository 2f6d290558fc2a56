// Package controller implements the connection state machine from
// spec.md §4.6: pairing and reconnect handshakes, the responder's
// accept loop, the text/image send operations, user-initiated
// disconnect, and capped auto-reconnect with a fixed inter-attempt
// delay.
package controller
