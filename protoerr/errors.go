// Package protoerr defines the shared error taxonomy produced by the
// Universal Clipboard protocol engine: framing, handshake, transport, and
// dispatcher failures all surface as one of these sentinels, wrapped in an
// *Error that carries which operation and peer failed.
//
// Every fatal session error across the transport/protocol/session/
// controller packages takes this one shape instead of each layer inventing
// its own error type, mirroring opd-ai/toxcore's net.ToxNetError.
package protoerr

import (
	"errors"
	"fmt"
)

var (
	// ErrFraming indicates a short read, oversized declared length, or
	// unexpected EOF on the raw byte stream.
	ErrFraming = errors.New("framing error")

	// ErrProtocolViolation indicates an unknown message type, a
	// payload-length mismatch, a bad handshake selector byte, or a
	// message the dispatcher did not expect in its current state.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrHandshakeFailed indicates a Noise handshake failed to
	// authenticate (PSK mismatch or a tampered message).
	ErrHandshakeFailed = errors.New("handshake failed")

	// ErrTransportBroken indicates an AEAD decrypt failure or an
	// underlying stream failure during an established session.
	ErrTransportBroken = errors.New("transport broken")

	// ErrTimeout indicates a pending text or image ACK was not
	// delivered within its budget.
	ErrTimeout = errors.New("timeout")

	// ErrRemoteError indicates the peer sent an ERROR message.
	ErrRemoteError = errors.New("remote error")
)

// Error wraps a taxonomy sentinel with the operation and peer it occurred
// on, giving every fatal session error the same Error()/Unwrap() shape.
type Error struct {
	Op   string
	Peer string
	Err  error
}

func (e *Error) Error() string {
	if e.Peer == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (peer %s): %v", e.Op, e.Peer, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error for op/peer around err, defaulting err itself to
// ErrProtocolViolation when it is nil (a programmer error, not expected in
// practice).
func Wrap(op, peer string, err error) *Error {
	if err == nil {
		err = ErrProtocolViolation
	}
	return &Error{Op: op, Peer: peer, Err: err}
}
