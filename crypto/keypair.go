// Package crypto implements the identity-keypair primitives shared by the
// handshake, pairing, and storage layers of Universal Clipboard.
//
// Example:
//
//	keys, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Public key:", hex.EncodeToString(keys.Public[:]))
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// KeyPair is a long-lived Curve25519 identity keypair, created once per
// device and persisted as hex (see ToHex / KeyPairFromHex).
type KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateKeyPair creates a new random Curve25519 identity key pair.
func GenerateKeyPair() (*KeyPair, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "GenerateKeyPair",
		"package":  "crypto",
	})

	publicKey, privateKey, err := box.GenerateKey(rand.Reader)
	if err != nil {
		logger.WithError(err).Error("failed to generate identity keypair")
		return nil, err
	}

	keyPair := &KeyPair{
		Public:  *publicKey,
		Private: *privateKey,
	}

	logger.WithField("public_key_preview", fmt.Sprintf("%x", keyPair.Public[:8])).
		Debug("generated identity keypair")

	return keyPair, nil
}

// FromSecretKey derives a key pair from an existing private key, deriving
// the public half rather than trusting a caller-supplied one. Implementers
// should always set only the private key and let the library derive the
// public key (or set both via a single call like this one) — never set the
// private key and then the public key separately, since some DH primitives
// zero the private key when the public key is assigned afterward.
func FromSecretKey(secretKey [32]byte) (*KeyPair, error) {
	if isZeroKey(secretKey) {
		return nil, errors.New("invalid secret key: all zeros")
	}

	var privateKey [32]byte
	copy(privateKey[:], secretKey[:])

	// NaCl/libsodium clamping, applied to the scratch copy only; the
	// returned KeyPair keeps the original unclamped private key.
	privateKey[0] &= 248
	privateKey[31] &= 127
	privateKey[31] |= 64

	var publicKey [32]byte
	curve25519.ScalarBaseMult(&publicKey, &privateKey)

	keyPair := &KeyPair{
		Public:  publicKey,
		Private: secretKey,
	}

	ZeroBytes(privateKey[:])

	return keyPair, nil
}

// ToHex encodes the key pair as hex strings, matching the identity
// persistence format: private key, then public key.
func (kp *KeyPair) ToHex() (privateHex, publicHex string) {
	return hex.EncodeToString(kp.Private[:]), hex.EncodeToString(kp.Public[:])
}

// KeyPairFromHex parses a hex-encoded private key and re-derives the public
// half, the inverse of ToHex.
func KeyPairFromHex(privateHex string) (*KeyPair, error) {
	raw, err := hex.DecodeString(privateHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex private key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(raw))
	}

	var secretKey [32]byte
	copy(secretKey[:], raw)
	defer ZeroBytes(secretKey[:])

	return FromSecretKey(secretKey)
}

// isZeroKey checks if a key consists of all zeros.
func isZeroKey(key [32]byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}
