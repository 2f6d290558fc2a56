package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protoerr"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		typ     Type
		payload []byte
	}{
		{"clipboard send", ClipboardSend, []byte("hello world")},
		{"clipboard ack", ClipboardAck, nil},
		{"ping", Ping, nil},
		{"pong", Pong, nil},
		{"error", ErrorMessage, []byte("clipboard error: denied")},
		{"image chunk", ImageChunk, bytes.Repeat([]byte{0xAB}, 100)},
		{"image send end", ImageSendEnd, nil},
		{"image ack", ImageAck, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Encode(tc.typ, tc.payload)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}

			msg, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if msg.Type != tc.typ {
				t.Errorf("Type = %v, want %v", msg.Type, tc.typ)
			}
			if !bytes.Equal(msg.Payload, tc.payload) {
				t.Errorf("Payload = %v, want %v", msg.Payload, tc.payload)
			}
		})
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	frame, err := Encode(ClipboardSend, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	frame[0] = 0xFE

	_, err = Decode(frame)
	if !errors.Is(err, protoerr.ErrProtocolViolation) {
		t.Fatalf("Decode() error = %v, want ErrProtocolViolation", err)
	}
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	frame, err := Encode(ClipboardSend, []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	frame = append(frame, 0xFF) // trailing byte not accounted for in payload_length

	_, err = Decode(frame)
	if !errors.Is(err, protoerr.ErrFraming) {
		t.Fatalf("Decode() error = %v, want ErrFraming", err)
	}
}

func TestDecodeRejectsShortHeader(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x00, 0x00})
	if !errors.Is(err, protoerr.ErrFraming) {
		t.Fatalf("Decode() error = %v, want ErrFraming", err)
	}
}

func TestEncodeRejectsOversizedImageChunk(t *testing.T) {
	_, err := Encode(ImageChunk, make([]byte, limits.MaxImageChunkPayload+1))
	if err == nil {
		t.Fatal("Encode() expected error for oversized image chunk")
	}
}

func TestDeviceInfoRoundTrip(t *testing.T) {
	frame, err := NewDeviceInfo("Alice's Laptop")
	if err != nil {
		t.Fatalf("NewDeviceInfo() error: %v", err)
	}
	msg, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if msg.Type != DeviceInfo {
		t.Fatalf("Type = %v, want DeviceInfo", msg.Type)
	}

	body, err := DecodeDeviceInfo(msg.Payload)
	if err != nil {
		t.Fatalf("DecodeDeviceInfo() error: %v", err)
	}
	if body.Name != "Alice's Laptop" {
		t.Errorf("Name = %q, want %q", body.Name, "Alice's Laptop")
	}
}

func TestImageSendStartRoundTrip(t *testing.T) {
	frame, err := NewImageSendStart(1920, 1080, 150000, "image/png")
	if err != nil {
		t.Fatalf("NewImageSendStart() error: %v", err)
	}
	msg, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	body, err := DecodeImageSendStart(msg.Payload)
	if err != nil {
		t.Fatalf("DecodeImageSendStart() error: %v", err)
	}
	if body.Width != 1920 || body.Height != 1080 || body.TotalBytes != 150000 || body.MimeType != "image/png" {
		t.Errorf("DecodeImageSendStart() = %+v, unexpected", body)
	}
}

func TestDecodeDeviceInfoRejectsInvalidJSON(t *testing.T) {
	_, err := DecodeDeviceInfo([]byte("not json"))
	if !errors.Is(err, protoerr.ErrProtocolViolation) {
		t.Fatalf("DecodeDeviceInfo() error = %v, want ErrProtocolViolation", err)
	}
}

func TestTypeString(t *testing.T) {
	if ClipboardSend.String() != "CLIPBOARD_SEND" {
		t.Errorf("String() = %q, want CLIPBOARD_SEND", ClipboardSend.String())
	}
	if got := Type(0xFE).String(); got != "UNKNOWN(0xFE)" {
		t.Errorf("String() = %q, want UNKNOWN(0xFE)", got)
	}
}
