package transport

import (
	"crypto/subtle"
	"io"
	"net"

	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protoerr"
)

// SelectorPairing and SelectorReconnect are the two single-byte prologue
// markers an initiator writes to the raw connection before any Noise
// message is exchanged. The selector is never framed and never enters
// the Noise handshake hash; it exists purely so the responder's accept
// loop can decide which handshake engine to construct, and, for
// reconnection, which paired-device record to look up, before a single
// Noise byte is read.
const (
	SelectorPairing   byte = 0x00
	SelectorReconnect byte = 0x01
)

// WriteHandshakeSelector writes the initiator's raw prologue: one selector
// byte, followed by localPub (the initiator's own 32-byte static public
// key) when selector is SelectorReconnect. It must be called before any
// framed handshake message is written on conn.
func WriteHandshakeSelector(conn net.Conn, selector byte, localPub []byte) error {
	if _, err := conn.Write([]byte{selector}); err != nil {
		return protoerr.Wrap("transport: write handshake selector", "", err)
	}
	if selector != SelectorReconnect {
		return nil
	}
	if len(localPub) != limits.StaticKeySize {
		return protoerr.Wrap("transport: write handshake selector", "", protoerr.ErrProtocolViolation)
	}
	if _, err := conn.Write(localPub); err != nil {
		return protoerr.Wrap("transport: write reconnect public key", "", err)
	}
	return nil
}

// ReadHandshakeSelector reads the raw prologue a responder's accept loop
// sees first, before constructing either handshake engine. For
// SelectorReconnect it also reads the initiator's 32-byte static public
// key, which the caller uses to look up the matching paired-device
// record. An unrecognized selector byte is a protocol violation: the
// caller should close the connection without writing any response.
func ReadHandshakeSelector(conn net.Conn) (selector byte, peerPubKey []byte, err error) {
	var header [1]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return 0, nil, protoerr.Wrap("transport: read handshake selector", "", err)
	}

	switch header[0] {
	case SelectorPairing:
		return SelectorPairing, nil, nil
	case SelectorReconnect:
		pub := make([]byte, limits.StaticKeySize)
		if _, err := io.ReadFull(conn, pub); err != nil {
			return 0, nil, protoerr.Wrap("transport: read reconnect public key", "", err)
		}
		return SelectorReconnect, pub, nil
	default:
		return 0, nil, protoerr.Wrap("transport: read handshake selector", "", protoerr.ErrProtocolViolation)
	}
}

// ConstantTimeEqual reports whether two public keys match, used when a
// responder cross-checks an inbound reconnect key against a stored record
// without leaking timing information about partial matches.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
