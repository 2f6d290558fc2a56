// Package transport implements the length-prefixed byte framing and the
// post-handshake encrypted channel used to carry Universal Clipboard
// protocol messages over a plain TCP connection between two devices on the
// same local network.
//
// # Layering
//
// Two layers sit on top of a net.Conn:
//
//	FramedConn      — reads/writes [length:2 big-endian][payload] frames,
//	                  used directly for the plaintext handshake messages.
//	EncryptedTransport — wraps a FramedConn with the send/receive
//	                  noise.CipherState pair produced by a completed
//	                  handshake; every application frame is additionally
//	                  AEAD-sealed before it goes on the wire.
//
// # Example
//
//	conn, err := net.Dial("tcp", addr)
//	transport, remoteKey, err := PerformPairingHandshake(conn, identity, psk, noise.Initiator)
//	if err != nil {
//	    return err
//	}
//	if err := transport.Send([]byte("hello")); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// FramedConn reports malformed or oversized frames as ErrFrameTooLarge
// (from the limits package) or a wrapped io error. EncryptedTransport
// reports AEAD failures as ErrTransportBroken: once sealing or opening
// fails, the cipher state's nonce counter and the peer's are no longer
// known to agree, so the connection cannot be recovered and must be
// closed and re-established.
package transport
