package transport

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/universal-clipboard/uclip/crypto"
	"github.com/universal-clipboard/uclip/noise"
	"github.com/universal-clipboard/uclip/protoerr"
)

// PerformPairingHandshake writes the SelectorPairing prologue byte (when
// role is Initiator) and then drives the 3-message XXpsk0 handshake over
// conn, returning an EncryptedTransport plus the peer's static public key
// (the caller persists this as a new paired-device record). identity is
// this device's 32-byte Curve25519 private key; psk is the 32-byte key
// derived from the pairing code.
//
// A responder must already have consumed the selector byte via
// ReadHandshakeSelector (its accept loop reads the selector first, before
// deciding to call this function at all) and must not read it again here.
func PerformPairingHandshake(conn net.Conn, identity, psk []byte, role noise.HandshakeRole) (*EncryptedTransport, []byte, error) {
	framed := NewFramedConn(conn)

	hs, err := noise.NewXXPSK0Handshake(identity, psk, role)
	if err != nil {
		logrus.WithError(err).Error("transport: create pairing handshake failed")
		return nil, nil, protoerr.Wrap("transport: create pairing handshake", "", protoerr.ErrHandshakeFailed)
	}

	logger := logrus.WithFields(logrus.Fields{"role": role, "remote": conn.RemoteAddr()})

	if role == noise.Initiator {
		if err := WriteHandshakeSelector(conn, SelectorPairing, nil); err != nil {
			return nil, nil, err
		}
		if err := writeHandshakeStep(framed, hs.WriteMessage, nil); err != nil {
			return nil, nil, err
		}
		if _, _, err := readHandshakeMessage(framed, hs.ReadMessage); err != nil {
			return nil, nil, err
		}
		if err := writeHandshakeStep(framed, hs.WriteMessage, nil); err != nil {
			return nil, nil, err
		}
	} else {
		if _, _, err := readHandshakeMessage(framed, hs.ReadMessage); err != nil {
			return nil, nil, err
		}
		if err := writeHandshakeStep(framed, hs.WriteMessage, nil); err != nil {
			return nil, nil, err
		}
		if _, _, err := readHandshakeMessage(framed, hs.ReadMessage); err != nil {
			return nil, nil, err
		}
	}

	if !hs.IsComplete() {
		return nil, nil, protoerr.Wrap("transport: pairing handshake", "", protoerr.ErrHandshakeFailed)
	}

	remoteKey, err := hs.GetRemoteStaticKey()
	if err != nil {
		logrus.WithError(err).Error("transport: read remote static key failed")
		return nil, nil, protoerr.Wrap("transport: pairing handshake", "", protoerr.ErrHandshakeFailed)
	}

	send, recv, err := hs.GetCipherStates()
	if err != nil {
		logrus.WithError(err).Error("transport: read pairing cipher states failed")
		return nil, nil, protoerr.Wrap("transport: pairing handshake", "", protoerr.ErrHandshakeFailed)
	}

	logger.Info("pairing handshake complete")
	return NewEncryptedTransport(conn, send, recv), remoteKey, nil
}

// PerformReconnectHandshake writes the SelectorReconnect prologue byte and
// this device's own static public key (when role is Initiator) and then
// drives the 2-message KK handshake over conn for an already-paired
// device. identity is this device's private key; peerKey is the
// previously paired peer's static public key from the stored
// paired-device record.
//
// A responder must already have consumed the selector byte and the
// initiator's public key via ReadHandshakeSelector, used that key to look
// up peerKey in the paired-device store, and only then call this function.
func PerformReconnectHandshake(conn net.Conn, identity, peerKey []byte, role noise.HandshakeRole) (*EncryptedTransport, error) {
	framed := NewFramedConn(conn)

	hs, err := noise.NewKKHandshake(identity, peerKey, role)
	if err != nil {
		logrus.WithError(err).Error("transport: create reconnect handshake failed")
		return nil, protoerr.Wrap("transport: create reconnect handshake", "", protoerr.ErrHandshakeFailed)
	}

	logger := logrus.WithFields(logrus.Fields{"role": role, "remote": conn.RemoteAddr()})

	if role == noise.Initiator {
		var secretKey [32]byte
		copy(secretKey[:], identity)
		keys, err := crypto.FromSecretKey(secretKey)
		if err != nil {
			return nil, fmt.Errorf("transport: derive local public key: %w", err)
		}
		if err := WriteHandshakeSelector(conn, SelectorReconnect, keys.Public[:]); err != nil {
			return nil, err
		}

		msg1, _, err := hs.WriteMessage(nil, nil)
		if err != nil {
			logrus.WithError(err).Error("transport: write reconnect message 1 failed")
			return nil, protoerr.Wrap("transport: reconnect handshake", "", protoerr.ErrHandshakeFailed)
		}
		if err := framed.WriteFrame(msg1); err != nil {
			return nil, err
		}

		msg2, err := framed.ReadFrame()
		if err != nil {
			return nil, err
		}
		if _, _, err := hs.ReadMessage(msg2); err != nil {
			logrus.WithError(err).Error("transport: read reconnect message 2 failed")
			return nil, protoerr.Wrap("transport: reconnect handshake", "", protoerr.ErrHandshakeFailed)
		}
	} else {
		msg1, err := framed.ReadFrame()
		if err != nil {
			return nil, err
		}
		msg2, _, err := hs.WriteMessage(nil, msg1)
		if err != nil {
			logrus.WithError(err).Error("transport: write reconnect message 2 failed")
			return nil, protoerr.Wrap("transport: reconnect handshake", "", protoerr.ErrHandshakeFailed)
		}
		if err := framed.WriteFrame(msg2); err != nil {
			return nil, err
		}
	}

	if !hs.IsComplete() {
		return nil, protoerr.Wrap("transport: reconnect handshake", "", protoerr.ErrHandshakeFailed)
	}

	send, recv, err := hs.GetCipherStates()
	if err != nil {
		logrus.WithError(err).Error("transport: read reconnect cipher states failed")
		return nil, protoerr.Wrap("transport: reconnect handshake", "", protoerr.ErrHandshakeFailed)
	}

	logger.Info("reconnect handshake complete")
	return NewEncryptedTransport(conn, send, recv), nil
}

func writeHandshakeStep(framed *FramedConn, write func([]byte) ([]byte, bool, error), payload []byte) error {
	msg, _, err := write(payload)
	if err != nil {
		logrus.WithError(err).Error("transport: write handshake message failed")
		return protoerr.Wrap("transport: write handshake message", "", protoerr.ErrHandshakeFailed)
	}
	return framed.WriteFrame(msg)
}

func readHandshakeMessage(framed *FramedConn, read func([]byte) ([]byte, bool, error)) ([]byte, bool, error) {
	msg, err := framed.ReadFrame()
	if err != nil {
		return nil, false, err
	}
	payload, complete, err := read(msg)
	if err != nil {
		logrus.WithError(err).Error("transport: read handshake message failed")
		return nil, false, protoerr.Wrap("transport: read handshake message", "", protoerr.ErrHandshakeFailed)
	}
	return payload, complete, nil
}
