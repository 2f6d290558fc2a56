package pairing

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"

	"github.com/universal-clipboard/uclip/limits"
)

// hkdfSalt and hkdfInfo fix the HKDF-SHA256 domain separation so that a
// pairing code always derives the same PSK on both devices and cannot be
// confused with a key derived for any other purpose in this module.
const (
	hkdfSalt = "uclip-pair-v1"
	hkdfInfo = "psk"
	pskLen   = 32
)

// ErrInvalidPairingCode indicates a pairing code is not exactly
// limits.PairingCodeDigits decimal digits.
var ErrInvalidPairingCode = errors.New("pairing: code must be a 6-digit decimal string")

// GeneratePairingCode returns a new random 6-digit pairing code, displayed
// on the responder's screen for the user to type into the initiator.
func GeneratePairingCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("pairing: generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", limits.PairingCodeDigits, n.Int64()), nil
}

// DeriveSessionKey derives the 32-byte PSK used by the XXpsk0 handshake
// from a pairing code, via HKDF-SHA256(ikm=code, salt=hkdfSalt, info=hkdfInfo).
func DeriveSessionKey(code string) ([]byte, error) {
	if !isValidCode(code) {
		return nil, ErrInvalidPairingCode
	}

	reader := hkdf.New(sha256.New, []byte(code), []byte(hkdfSalt), []byte(hkdfInfo))
	psk := make([]byte, pskLen)
	if _, err := io.ReadFull(reader, psk); err != nil {
		return nil, fmt.Errorf("pairing: derive session key: %w", err)
	}
	return psk, nil
}

func isValidCode(code string) bool {
	if len(code) != limits.PairingCodeDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
