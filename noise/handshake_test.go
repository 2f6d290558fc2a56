package noise

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	return key
}

// runXXPSK0 drives a full 3-message pairing handshake between an initiator
// and responder sharing the same PSK, and returns both sides once complete.
func runXXPSK0(t *testing.T, psk []byte) (*XXPSK0Handshake, *XXPSK0Handshake) {
	t.Helper()

	initiatorKey := randomKey(t)
	responderKey := randomKey(t)

	initiator, err := NewXXPSK0Handshake(initiatorKey, psk, Initiator)
	if err != nil {
		t.Fatalf("NewXXPSK0Handshake(initiator) failed: %v", err)
	}
	responder, err := NewXXPSK0Handshake(responderKey, psk, Responder)
	if err != nil {
		t.Fatalf("NewXXPSK0Handshake(responder) failed: %v", err)
	}

	msg1, complete, err := initiator.WriteMessage(nil)
	if err != nil || complete {
		t.Fatalf("msg1: complete=%v err=%v", complete, err)
	}

	if _, complete, err := responder.ReadMessage(msg1); err != nil || complete {
		t.Fatalf("responder read msg1: complete=%v err=%v", complete, err)
	}
	msg2, complete, err := responder.WriteMessage(nil)
	if err != nil || complete {
		t.Fatalf("msg2: complete=%v err=%v", complete, err)
	}

	if _, complete, err := initiator.ReadMessage(msg2); err != nil || complete {
		t.Fatalf("initiator read msg2: complete=%v err=%v", complete, err)
	}
	msg3, complete, err := initiator.WriteMessage(nil)
	if err != nil || !complete {
		t.Fatalf("msg3: complete=%v err=%v", complete, err)
	}

	if _, complete, err := responder.ReadMessage(msg3); err != nil || !complete {
		t.Fatalf("responder read msg3: complete=%v err=%v", complete, err)
	}

	return initiator, responder
}

func TestXXPSK0HandshakeFlow(t *testing.T) {
	psk := randomKey(t)
	initiator, responder := runXXPSK0(t, psk)

	if !initiator.IsComplete() || !responder.IsComplete() {
		t.Fatal("both sides should be complete after the 3-message exchange")
	}

	iSend, iRecv, err := initiator.GetCipherStates()
	if err != nil || iSend == nil || iRecv == nil {
		t.Fatalf("initiator cipher states: %v", err)
	}
	rSend, rRecv, err := responder.GetCipherStates()
	if err != nil || rSend == nil || rRecv == nil {
		t.Fatalf("responder cipher states: %v", err)
	}

	remoteOfInitiator, err := initiator.GetRemoteStaticKey()
	if err != nil {
		t.Fatalf("initiator.GetRemoteStaticKey: %v", err)
	}
	if !bytes.Equal(remoteOfInitiator, responder.GetLocalStaticKey()) {
		t.Error("initiator's view of responder's key doesn't match responder's own key")
	}

	remoteOfResponder, err := responder.GetRemoteStaticKey()
	if err != nil {
		t.Fatalf("responder.GetRemoteStaticKey: %v", err)
	}
	if !bytes.Equal(remoteOfResponder, initiator.GetLocalStaticKey()) {
		t.Error("responder's view of initiator's key doesn't match initiator's own key")
	}

	// Cross-encrypt/decrypt: the initiator's send cipher must be the
	// responder's recv cipher, and vice versa. A same-binding-order bug
	// in either side's final message (WriteMessage vs ReadMessage) would
	// otherwise pass every check above while still leaving both sides
	// unable to decrypt each other's post-handshake frames.
	ciphertext := iSend.Encrypt(nil, nil, []byte("hello from initiator"))
	plaintext, err := rRecv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		t.Fatalf("responder failed to decrypt initiator's message: %v", err)
	}
	if !bytes.Equal(plaintext, []byte("hello from initiator")) {
		t.Error("responder decrypted a different plaintext than the initiator sent")
	}

	ciphertext = rSend.Encrypt(nil, nil, []byte("hello from responder"))
	plaintext, err = iRecv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		t.Fatalf("initiator failed to decrypt responder's message: %v", err)
	}
	if !bytes.Equal(plaintext, []byte("hello from responder")) {
		t.Error("initiator decrypted a different plaintext than the responder sent")
	}
}

func TestXXPSK0MismatchedPSKFails(t *testing.T) {
	initiatorKey := randomKey(t)
	responderKey := randomKey(t)

	initiator, err := NewXXPSK0Handshake(initiatorKey, randomKey(t), Initiator)
	if err != nil {
		t.Fatal(err)
	}
	responder, err := NewXXPSK0Handshake(responderKey, randomKey(t), Responder)
	if err != nil {
		t.Fatal(err)
	}

	msg1, _, err := initiator.WriteMessage(nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := responder.ReadMessage(msg1); err == nil {
		t.Fatal("expected responder to reject a handshake started with a different PSK")
	}
}

func TestXXPSK0RejectsWrongPSKSize(t *testing.T) {
	if _, err := NewXXPSK0Handshake(randomKey(t), []byte("too-short"), Initiator); err == nil {
		t.Error("expected error for non-32-byte PSK")
	}
}

func TestXXPSK0HandshakeCompleteErrors(t *testing.T) {
	psk := randomKey(t)
	initiator, _ := runXXPSK0(t, psk)

	if _, _, err := initiator.WriteMessage(nil); err != ErrHandshakeComplete {
		t.Errorf("expected ErrHandshakeComplete, got %v", err)
	}
}

func runKK(t *testing.T) (*KKHandshake, *KKHandshake) {
	t.Helper()

	initiatorKey := randomKey(t)
	responderKey := randomKey(t)

	var responderPriv [32]byte
	copy(responderPriv[:], responderKey)
	responderPair, err := staticKeypairFrom(responderKey)
	if err != nil {
		t.Fatal(err)
	}
	var initiatorPriv [32]byte
	copy(initiatorPriv[:], initiatorKey)
	initiatorPair, err := staticKeypairFrom(initiatorKey)
	if err != nil {
		t.Fatal(err)
	}

	initiator, err := NewKKHandshake(initiatorKey, responderPair.Public, Initiator)
	if err != nil {
		t.Fatalf("NewKKHandshake(initiator) failed: %v", err)
	}
	responder, err := NewKKHandshake(responderKey, initiatorPair.Public, Responder)
	if err != nil {
		t.Fatalf("NewKKHandshake(responder) failed: %v", err)
	}

	msg1, complete1, err := initiator.WriteMessage([]byte("hello"), nil)
	if err != nil {
		t.Fatalf("initiator write: %v", err)
	}
	if complete1 {
		t.Fatal("KK initiator should not complete after the first message")
	}

	msg2, complete2, err := responder.WriteMessage([]byte("hi"), msg1)
	if err != nil {
		t.Fatalf("responder write: %v", err)
	}
	if !complete2 {
		t.Fatal("KK responder should complete after replying")
	}

	if _, complete3, err := initiator.ReadMessage(msg2); err != nil || !complete3 {
		t.Fatalf("initiator read response: complete=%v err=%v", complete3, err)
	}

	return initiator, responder
}

func TestKKHandshakeFlow(t *testing.T) {
	initiator, responder := runKK(t)

	if !initiator.IsComplete() || !responder.IsComplete() {
		t.Fatal("both sides should be complete")
	}

	iSend, iRecv, err := initiator.GetCipherStates()
	if err != nil || iSend == nil || iRecv == nil {
		t.Fatalf("initiator cipher states: %v", err)
	}
	rSend, rRecv, err := responder.GetCipherStates()
	if err != nil || rSend == nil || rRecv == nil {
		t.Fatalf("responder cipher states: %v", err)
	}
}

func TestKKHandshakeRequiresPeerKey(t *testing.T) {
	if _, err := NewKKHandshake(randomKey(t), nil, Initiator); err == nil {
		t.Error("expected error when peer public key is missing")
	}
}

func TestKKHandshakeCompleteErrors(t *testing.T) {
	initiator, _ := runKK(t)

	if _, _, err := initiator.WriteMessage([]byte("again"), nil); err != ErrHandshakeComplete {
		t.Errorf("expected ErrHandshakeComplete, got %v", err)
	}
}

func TestKKHandshakeIncompleteErrors(t *testing.T) {
	responderKey := randomKey(t)
	peerPub, err := staticKeypairFrom(randomKey(t))
	if err != nil {
		t.Fatal(err)
	}

	handshake, err := NewKKHandshake(responderKey, peerPub.Public, Responder)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := handshake.GetCipherStates(); err != ErrHandshakeNotComplete {
		t.Errorf("expected ErrHandshakeNotComplete, got %v", err)
	}
	if _, err := handshake.GetRemoteStaticKey(); err != ErrHandshakeNotComplete {
		t.Errorf("expected ErrHandshakeNotComplete, got %v", err)
	}
}

func TestKKResponderCannotReadMessage(t *testing.T) {
	peerPub, err := staticKeypairFrom(randomKey(t))
	if err != nil {
		t.Fatal(err)
	}

	responder, err := NewKKHandshake(randomKey(t), peerPub.Public, Responder)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := responder.ReadMessage([]byte("test")); err == nil {
		t.Error("expected error when responder calls ReadMessage directly")
	}
}

func BenchmarkXXPSK0HandshakeFlow(b *testing.B) {
	psk := make([]byte, 32)
	rand.Read(psk)

	for i := 0; i < b.N; i++ {
		initiatorKey := make([]byte, 32)
		responderKey := make([]byte, 32)
		rand.Read(initiatorKey)
		rand.Read(responderKey)

		initiator, err := NewXXPSK0Handshake(initiatorKey, psk, Initiator)
		if err != nil {
			b.Fatal(err)
		}
		responder, err := NewXXPSK0Handshake(responderKey, psk, Responder)
		if err != nil {
			b.Fatal(err)
		}

		msg1, _, err := initiator.WriteMessage(nil)
		if err != nil {
			b.Fatal(err)
		}
		if _, _, err := responder.ReadMessage(msg1); err != nil {
			b.Fatal(err)
		}
		msg2, _, err := responder.WriteMessage(nil)
		if err != nil {
			b.Fatal(err)
		}
		if _, _, err := initiator.ReadMessage(msg2); err != nil {
			b.Fatal(err)
		}
		if _, _, err := initiator.WriteMessage(nil); err != nil {
			b.Fatal(err)
		}
	}
}
