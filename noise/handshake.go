// Package noise implements the Noise Protocol Framework handshakes used to
// establish encrypted sessions between Universal Clipboard peers.
package noise

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/flynn/noise"

	"github.com/universal-clipboard/uclip/crypto"
)

var (
	// ErrHandshakeNotComplete indicates the handshake is still in progress.
	ErrHandshakeNotComplete = errors.New("handshake not complete")
	// ErrInvalidMessage indicates a received message is invalid for the
	// current handshake state.
	ErrInvalidMessage = errors.New("invalid message for current handshake state")
	// ErrHandshakeComplete indicates the handshake has already finished.
	ErrHandshakeComplete = errors.New("handshake already complete")
)

// HandshakeRole distinguishes the device that opens the TCP connection
// (Initiator) from the one that accepts it (Responder); it has no relation
// to which device's clipboard pushes items once the session is connected.
type HandshakeRole uint8

const (
	// Initiator opens the connection and sends the first handshake message.
	Initiator HandshakeRole = iota
	// Responder accepts the connection and replies to the first message.
	Responder
)

func newCipherSuite() noise.CipherSuite {
	return noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)
}

func staticKeypairFrom(staticPrivKey []byte) (noise.DHKey, error) {
	if len(staticPrivKey) != 32 {
		return noise.DHKey{}, fmt.Errorf("static private key must be 32 bytes, got %d", len(staticPrivKey))
	}

	var privateKeyArray [32]byte
	copy(privateKeyArray[:], staticPrivKey)

	keyPair, err := crypto.FromSecretKey(privateKeyArray)
	if err != nil {
		crypto.ZeroBytes(privateKeyArray[:])
		return noise.DHKey{}, fmt.Errorf("failed to derive keypair: %w", err)
	}
	crypto.ZeroBytes(privateKeyArray[:])

	staticKey := noise.DHKey{
		Private: make([]byte, 32),
		Public:  make([]byte, 32),
	}
	copy(staticKey.Private, keyPair.Private[:])
	copy(staticKey.Public, keyPair.Public[:])

	return staticKey, nil
}

// XXPSK0Handshake implements the pairing handshake: Noise_XXpsk0_25519_
// ChaChaPoly_SHA256. Neither side knows the other's static public key
// beforehand; the pairing-code-derived PSK is mixed in before the first
// message so an eavesdropper who doesn't know the code cannot complete it.
type XXPSK0Handshake struct {
	role        HandshakeRole
	state       *noise.HandshakeState
	sendCipher  *noise.CipherState
	recvCipher  *noise.CipherState
	complete    bool
	localPubKey []byte
}

// NewXXPSK0Handshake creates a new pairing handshake. staticPrivKey is this
// device's long-term identity private key; psk is the 32-byte key derived
// from the pairing code (see the pairing package's DeriveSessionKey).
func NewXXPSK0Handshake(staticPrivKey, psk []byte, role HandshakeRole) (*XXPSK0Handshake, error) {
	if len(psk) != 32 {
		return nil, fmt.Errorf("pairing PSK must be 32 bytes, got %d", len(psk))
	}

	staticKey, err := staticKeypairFrom(staticPrivKey)
	if err != nil {
		return nil, err
	}

	config := noise.Config{
		CipherSuite:           newCipherSuite(),
		Random:                rand.Reader,
		Pattern:               noise.HandshakeXX,
		Initiator:             role == Initiator,
		StaticKeypair:         staticKey,
		PresharedKey:          psk,
		PresharedKeyPlacement: 0, // psk0: mixed in before the first message's "e" token
	}

	hs, err := noise.NewHandshakeState(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create XXpsk0 handshake state: %w", err)
	}

	return &XXPSK0Handshake{
		role:        role,
		state:       hs,
		localPubKey: staticKey.Public,
	}, nil
}

// WriteMessage writes the next pairing handshake message. The caller drives
// the 3-message XX exchange externally: initiator writes msg1, responder
// reads msg1 then writes msg2, initiator reads msg2 then writes msg3,
// responder reads msg3.
func (h *XXPSK0Handshake) WriteMessage(payload []byte) ([]byte, bool, error) {
	if h.complete {
		return nil, false, ErrHandshakeComplete
	}

	message, send, recv, err := h.state.WriteMessage(nil, payload)
	if err != nil {
		return nil, false, fmt.Errorf("XXpsk0 write failed: %w", err)
	}

	if send != nil && recv != nil {
		h.sendCipher = send
		h.recvCipher = recv
		h.complete = true
		return message, true, nil
	}

	return message, false, nil
}

// ReadMessage reads a received pairing handshake message.
func (h *XXPSK0Handshake) ReadMessage(message []byte) ([]byte, bool, error) {
	if h.complete {
		return nil, false, ErrHandshakeComplete
	}

	payload, recv, send, err := h.state.ReadMessage(nil, message)
	if err != nil {
		return nil, false, fmt.Errorf("XXpsk0 read failed: %w", err)
	}

	if send != nil && recv != nil {
		h.sendCipher = send
		h.recvCipher = recv
		h.complete = true
		return payload, true, nil
	}

	return payload, false, nil
}

// IsComplete reports whether the handshake has finished.
func (h *XXPSK0Handshake) IsComplete() bool {
	return h.complete
}

// GetCipherStates returns the send/receive cipher states established by the
// completed handshake.
func (h *XXPSK0Handshake) GetCipherStates() (*noise.CipherState, *noise.CipherState, error) {
	if !h.complete {
		return nil, nil, ErrHandshakeNotComplete
	}
	return h.sendCipher, h.recvCipher, nil
}

// GetRemoteStaticKey returns the peer's static public key, learned during
// the handshake, for the caller to persist as a paired-device record.
func (h *XXPSK0Handshake) GetRemoteStaticKey() ([]byte, error) {
	if !h.complete {
		return nil, ErrHandshakeNotComplete
	}
	remote := h.state.PeerStatic()
	if len(remote) == 0 {
		return nil, fmt.Errorf("remote static key not available")
	}
	key := make([]byte, len(remote))
	copy(key, remote)
	return key, nil
}

// GetLocalStaticKey returns this device's static public key.
func (h *XXPSK0Handshake) GetLocalStaticKey() []byte {
	if len(h.localPubKey) == 0 {
		return nil
	}
	key := make([]byte, len(h.localPubKey))
	copy(key, h.localPubKey)
	return key
}

// KKHandshake implements the reconnection handshake: Noise_KK_25519_
// ChaChaPoly_SHA256. Both sides already know each other's static public key
// from a prior pairing exchange, so the handshake completes in one round
// trip with no PSK.
type KKHandshake struct {
	role       HandshakeRole
	state      *noise.HandshakeState
	sendCipher *noise.CipherState
	recvCipher *noise.CipherState
	complete   bool
}

// NewKKHandshake creates a new reconnection handshake. staticPrivKey is this
// device's identity private key; peerPubKey is the previously paired peer's
// static public key, required for both roles since KK assumes both sides
// already know each other.
func NewKKHandshake(staticPrivKey, peerPubKey []byte, role HandshakeRole) (*KKHandshake, error) {
	if len(peerPubKey) != 32 {
		return nil, fmt.Errorf("peer public key must be 32 bytes, got %d", len(peerPubKey))
	}

	staticKey, err := staticKeypairFrom(staticPrivKey)
	if err != nil {
		return nil, err
	}

	config := noise.Config{
		CipherSuite:   newCipherSuite(),
		Random:        rand.Reader,
		Pattern:       noise.HandshakeKK,
		Initiator:     role == Initiator,
		StaticKeypair: staticKey,
		PeerStatic:    append([]byte(nil), peerPubKey...),
	}

	hs, err := noise.NewHandshakeState(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create KK handshake state: %w", err)
	}

	return &KKHandshake{role: role, state: hs}, nil
}

// WriteMessage processes the next handshake message, mirroring the
// XXpsk0 handshake's split between initiator and responder message
// construction.
func (k *KKHandshake) WriteMessage(payload, receivedMessage []byte) ([]byte, bool, error) {
	if k.complete {
		return nil, false, ErrHandshakeComplete
	}

	if k.role == Initiator {
		return k.processInitiatorMessage(payload)
	}
	return k.processResponderMessage(payload, receivedMessage)
}

func (k *KKHandshake) processInitiatorMessage(payload []byte) ([]byte, bool, error) {
	message, send, recv, err := k.state.WriteMessage(nil, payload)
	if err != nil {
		return nil, false, fmt.Errorf("KK initiator write failed: %w", err)
	}

	k.sendCipher = send
	k.recvCipher = recv
	// k.complete stays false: the initiator needs the responder's reply
	// before either cipher state is safe to use.

	return message, k.complete, nil
}

func (k *KKHandshake) processResponderMessage(payload, receivedMessage []byte) ([]byte, bool, error) {
	if receivedMessage == nil {
		return nil, false, fmt.Errorf("responder requires received message")
	}

	if _, _, _, err := k.state.ReadMessage(nil, receivedMessage); err != nil {
		return nil, false, fmt.Errorf("KK responder read failed: %w", err)
	}

	message, send, recv, err := k.state.WriteMessage(nil, payload)
	if err != nil {
		return nil, false, fmt.Errorf("KK responder write failed: %w", err)
	}

	k.sendCipher = send
	k.recvCipher = recv
	k.complete = true

	return message, k.complete, nil
}

// ReadMessage processes a received handshake message. Only the initiator
// calls this, to read the responder's single reply.
func (k *KKHandshake) ReadMessage(message []byte) ([]byte, bool, error) {
	if k.complete {
		return nil, false, ErrHandshakeComplete
	}
	if k.role != Initiator {
		return nil, false, fmt.Errorf("only the initiator reads a KK response message")
	}

	payload, recv, send, err := k.state.ReadMessage(nil, message)
	if err != nil {
		return nil, false, fmt.Errorf("KK initiator read response failed: %w", err)
	}

	k.recvCipher = recv
	k.sendCipher = send
	k.complete = true
	return payload, k.complete, nil
}

// IsComplete reports whether the handshake has finished.
func (k *KKHandshake) IsComplete() bool {
	return k.complete
}

// GetCipherStates returns the send/receive cipher states established by the
// completed handshake.
func (k *KKHandshake) GetCipherStates() (*noise.CipherState, *noise.CipherState, error) {
	if !k.complete {
		return nil, nil, ErrHandshakeNotComplete
	}
	if k.sendCipher == nil || k.recvCipher == nil {
		return nil, nil, fmt.Errorf("cipher states not available")
	}
	return k.sendCipher, k.recvCipher, nil
}

// GetRemoteStaticKey returns the peer's static public key, which the caller
// already knew before the handshake but can use here to confirm identity.
func (k *KKHandshake) GetRemoteStaticKey() ([]byte, error) {
	if !k.complete {
		return nil, ErrHandshakeNotComplete
	}
	remote := k.state.PeerStatic()
	if len(remote) == 0 {
		return nil, fmt.Errorf("remote static key not available")
	}
	key := make([]byte, len(remote))
	copy(key, remote)
	return key, nil
}
