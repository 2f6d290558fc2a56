// Package protocol implements the Universal Clipboard application message
// codec: the fixed [type:1][payload_length:4 BE][payload:N] header every
// message carries inside one encrypted plaintext frame, and the ten typed
// messages built on it.
//
// Encoding guarantees payload_length matches len(payload); decoding
// rejects an unknown type byte as protoerr.ErrProtocolViolation, and a
// header declaring a length that does not match the bytes actually
// present as protoerr.ErrFraming.
package protocol
