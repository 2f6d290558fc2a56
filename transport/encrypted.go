package transport

import (
	"net"

	"github.com/flynn/noise"
	"github.com/sirupsen/logrus"

	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protoerr"
)

// ErrTransportBroken indicates an AEAD seal or open failure. Once this
// happens the local and remote cipher-state nonce counters can no longer
// be assumed to agree, so the session cannot be recovered; the connection
// must be closed and a fresh handshake performed. It is the same sentinel
// the rest of the module matches on via errors.Is, protoerr.ErrTransportBroken.
var ErrTransportBroken = protoerr.ErrTransportBroken

// EncryptedTransport carries plaintext application frames over a
// FramedConn, sealing each one with the send CipherState and opening each
// received one with the receive CipherState from a completed Noise
// handshake. Noise's CipherState already implements ChaCha20-Poly1305
// AEAD sealing with an internal strictly-increasing nonce, so this layer
// does not re-derive or duplicate that nonce bookkeeping.
type EncryptedTransport struct {
	framed *FramedConn
	send   *noise.CipherState
	recv   *noise.CipherState
}

// NewEncryptedTransport wraps conn's framing with the cipher states
// produced by a completed handshake.
func NewEncryptedTransport(conn net.Conn, send, recv *noise.CipherState) *EncryptedTransport {
	return &EncryptedTransport{
		framed: NewFramedConn(conn),
		send:   send,
		recv:   recv,
	}
}

// Send seals plaintext and writes it as one frame.
func (t *EncryptedTransport) Send(plaintext []byte) error {
	if err := limits.ValidatePlaintextLength(plaintext); err != nil {
		return err
	}

	ciphertext, err := t.send.Encrypt(nil, nil, plaintext)
	if err != nil {
		logrus.WithError(err).Error("transport: encrypt failed, channel is now broken")
		return protoerr.Wrap("transport: encrypt", "", ErrTransportBroken)
	}

	if err := t.framed.WriteFrame(ciphertext); err != nil {
		return err
	}
	return nil
}

// Receive reads one frame and opens it.
func (t *EncryptedTransport) Receive() ([]byte, error) {
	ciphertext, err := t.framed.ReadFrame()
	if err != nil {
		return nil, err
	}

	plaintext, err := t.recv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		logrus.WithError(err).Warn("transport: decrypt failed, channel is now broken")
		return nil, protoerr.Wrap("transport: decrypt", "", ErrTransportBroken)
	}
	return plaintext, nil
}

// Close closes the underlying connection.
func (t *EncryptedTransport) Close() error {
	return t.framed.Close()
}

// Conn returns the underlying net.Conn, for deadline management.
func (t *EncryptedTransport) Conn() net.Conn {
	return t.framed.Conn()
}
