// Package noise implements the two Noise Protocol Framework handshakes used
// by Universal Clipboard, built on the formally verified flynn/noise library
// with ChaCha20-Poly1305 encryption, SHA256 hashing, and Curve25519 key
// exchange.
//
// # Pattern Selection Guide
//
//	Pattern     │ When to Use                           │ Security Properties
//	────────────┼────────────────────────────────────────┼───────────────────────────────
//	XXpsk0      │ First-time pairing, code typed by user │ Mutual auth + PSK-gated MITM
//	KK          │ Reconnecting a previously paired peer  │ Mutual auth, forward secrecy
//
// # XXpsk0 Pattern (Pairing)
//
// Used once, when a device is paired for the first time. Neither side knows
// the other's static public key yet; a short-lived pre-shared key derived
// from the pairing code (see the pairing package) is mixed in before the
// first message so that an attacker who doesn't know the code cannot
// complete the handshake even if they intercept every message.
//
// Message flow (3 messages):
//
//	Initiator                              Responder
//	─────────                              ─────────
//	-> psk, e
//	                                       <- e, ee, s, es
//	-> s, se
//	[session established, both static keys now known]
//
// # KK Pattern (Reconnection)
//
// Used on every subsequent connection between two already-paired devices.
// Both sides already know each other's static public key from the pairing
// exchange, so no PSK is required and the handshake completes in a single
// round trip.
//
// Message flow (1 round trip):
//
//	Initiator                              Responder
//	─────────                              ─────────
//	-> e, es, ss
//	                                       <- e, ee, se
//	[session established]
//
// # Cipher Suite
//
// Both handshakes use DH25519 + ChaChaPoly + SHA256, matching the transport
// layer's AEAD so session keys can be handed directly from the completed
// handshake's CipherStates to the framed transport.
//
// # Error Handling
//
//   - ErrHandshakeNotComplete: operation requires a completed handshake
//   - ErrHandshakeComplete: handshake already finished, no more messages
//   - ErrInvalidMessage: a message arrived out of the expected order
package noise
