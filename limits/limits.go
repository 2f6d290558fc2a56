// Package limits provides centralized size limits for the Universal Clipboard
// wire protocol. This ensures consistent validation across framing, the
// encrypted transport, and the message codec instead of scattering magic
// numbers through each layer.
package limits

import "errors"

const (
	// MaxFrameLength is the largest declared length a framed read/write may
	// carry, imposed by the 2-byte big-endian length prefix.
	MaxFrameLength = 65535

	// AEADOverhead is the Poly1305 authentication tag size added by
	// ChaCha20-Poly1305 sealing.
	AEADOverhead = 16

	// MaxPlaintextFrame is the largest plaintext payload that still fits in
	// an encrypted frame once the AEAD tag is accounted for.
	MaxPlaintextFrame = MaxFrameLength - AEADOverhead // 65519

	// MessageHeaderSize is the fixed [type:1][payload_length:4] header every
	// application message carries inside its plaintext frame.
	MessageHeaderSize = 1 + 4

	// MaxMessagePayload is the largest single-message payload that fits
	// alongside the message header in one plaintext frame.
	MaxMessagePayload = MaxPlaintextFrame - MessageHeaderSize // 65514

	// MaxImageChunkPayload is the largest raw-byte payload of a single
	// IMAGE_CHUNK message.
	MaxImageChunkPayload = 60000

	// MaxImageBytes is the hard cap on a single image transfer, inbound or
	// outbound.
	MaxImageBytes = 25 * 1024 * 1024

	// StaticKeySize is the length in bytes of a Curve25519 public or
	// private key.
	StaticKeySize = 32

	// PairingCodeDigits is the number of decimal digits in a pairing code.
	PairingCodeDigits = 6
)

// ErrFrameTooLarge indicates a declared or requested length exceeds
// MaxFrameLength.
var ErrFrameTooLarge = errors.New("limits: frame exceeds maximum length")

// ErrPlaintextTooLarge indicates a plaintext payload exceeds MaxPlaintextFrame.
var ErrPlaintextTooLarge = errors.New("limits: plaintext exceeds maximum frame capacity")

// ErrImageTooLarge indicates an image's declared or actual size exceeds
// MaxImageBytes.
var ErrImageTooLarge = errors.New("limits: image exceeds maximum size")

// ValidateFrameLength checks a frame payload against MaxFrameLength.
func ValidateFrameLength(payload []byte) error {
	if len(payload) > MaxFrameLength {
		return ErrFrameTooLarge
	}
	return nil
}

// ValidatePlaintextLength checks a plaintext payload against MaxPlaintextFrame.
func ValidatePlaintextLength(plaintext []byte) error {
	if len(plaintext) > MaxPlaintextFrame {
		return ErrPlaintextTooLarge
	}
	return nil
}

// ValidateImageSize checks a declared or actual image size against
// MaxImageBytes. A size of zero or less is also rejected since the protocol
// never transfers an empty image.
func ValidateImageSize(totalBytes int64) error {
	if totalBytes <= 0 || totalBytes > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}
