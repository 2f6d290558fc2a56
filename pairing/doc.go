// Package pairing derives the pre-shared key used by the XXpsk0 pairing
// handshake from a short, human-typed pairing code, and generates the code
// itself.
//
// The code is never sent over the network — both devices derive the same
// 32-byte PSK locally via HKDF-SHA256 and the handshake's PSK-gated
// messages prove the derivation matched without revealing the code to an
// eavesdropper.
package pairing
