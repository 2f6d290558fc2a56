package protocol

import (
	"encoding/binary"
	"encoding/json"

	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protoerr"
)

// Type identifies one of the ten application message kinds carried inside
// an encrypted plaintext frame.
type Type byte

const (
	ClipboardSend  Type = 0x01
	ClipboardAck   Type = 0x02
	Ping           Type = 0x03
	Pong           Type = 0x04
	DeviceInfo     Type = 0x05
	ErrorMessage   Type = 0x06
	ImageSendStart Type = 0x07
	ImageChunk     Type = 0x08
	ImageSendEnd   Type = 0x09
	ImageAck       Type = 0x0A
)

// String names a Type for logging; an unrecognized value renders as its
// hex byte rather than panicking.
func (t Type) String() string {
	switch t {
	case ClipboardSend:
		return "CLIPBOARD_SEND"
	case ClipboardAck:
		return "CLIPBOARD_ACK"
	case Ping:
		return "PING"
	case Pong:
		return "PONG"
	case DeviceInfo:
		return "DEVICE_INFO"
	case ErrorMessage:
		return "ERROR"
	case ImageSendStart:
		return "IMAGE_SEND_START"
	case ImageChunk:
		return "IMAGE_CHUNK"
	case ImageSendEnd:
		return "IMAGE_SEND_END"
	case ImageAck:
		return "IMAGE_ACK"
	default:
		return fmtUnknown(t)
	}
}

func fmtUnknown(t Type) string {
	const hexDigits = "0123456789ABCDEF"
	return "UNKNOWN(0x" + string([]byte{hexDigits[t>>4], hexDigits[t&0xF]}) + ")"
}

func (t Type) valid() bool {
	return t >= ClipboardSend && t <= ImageAck
}

// Message is a decoded application message: a type byte and its payload,
// with the wire header already validated and stripped.
type Message struct {
	Type    Type
	Payload []byte
}

// Encode builds the [type:1][payload_length:4 BE][payload:N] wire form of
// one message. It rejects a payload too large to fit a single plaintext
// frame, and, for IMAGE_CHUNK specifically, a payload over the
// per-chunk cap.
func Encode(t Type, payload []byte) ([]byte, error) {
	if t == ImageChunk && len(payload) > limits.MaxImageChunkPayload {
		return nil, protoerr.Wrap("protocol: encode", "", limits.ErrFrameTooLarge)
	}
	if len(payload) > limits.MaxMessagePayload {
		return nil, protoerr.Wrap("protocol: encode", "", limits.ErrFrameTooLarge)
	}

	frame := make([]byte, limits.MessageHeaderSize+len(payload))
	frame[0] = byte(t)
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(payload)))
	copy(frame[5:], payload)
	return frame, nil
}

// Decode parses one plaintext frame into a Message. An unrecognized type
// byte or a payload_length that disagrees with the bytes actually present
// is rejected; the caller should treat either as a reason to close the
// session.
func Decode(frame []byte) (*Message, error) {
	if len(frame) < limits.MessageHeaderSize {
		return nil, protoerr.Wrap("protocol: decode", "", protoerr.ErrFraming)
	}

	t := Type(frame[0])
	if !t.valid() {
		return nil, protoerr.Wrap("protocol: decode", "", protoerr.ErrProtocolViolation)
	}

	declared := binary.BigEndian.Uint32(frame[1:5])
	payload := frame[limits.MessageHeaderSize:]
	if int(declared) != len(payload) {
		return nil, protoerr.Wrap("protocol: decode", "", protoerr.ErrFraming)
	}

	return &Message{Type: t, Payload: payload}, nil
}

// NewClipboardSend builds a CLIPBOARD_SEND message carrying UTF-8 text.
func NewClipboardSend(text string) ([]byte, error) {
	return Encode(ClipboardSend, []byte(text))
}

// NewClipboardAck builds an empty CLIPBOARD_ACK message.
func NewClipboardAck() ([]byte, error) {
	return Encode(ClipboardAck, nil)
}

// NewPing builds an empty PING message.
func NewPing() ([]byte, error) {
	return Encode(Ping, nil)
}

// NewPong builds an empty PONG message.
func NewPong() ([]byte, error) {
	return Encode(Pong, nil)
}

// NewError builds an ERROR message carrying a UTF-8 diagnostic.
func NewError(text string) ([]byte, error) {
	return Encode(ErrorMessage, []byte(text))
}

// NewImageSendEnd builds an empty IMAGE_SEND_END message.
func NewImageSendEnd() ([]byte, error) {
	return Encode(ImageSendEnd, nil)
}

// NewImageAck builds an empty IMAGE_ACK message.
func NewImageAck() ([]byte, error) {
	return Encode(ImageAck, nil)
}

// NewImageChunk builds an IMAGE_CHUNK message carrying up to
// limits.MaxImageChunkPayload raw bytes of the image being sent.
func NewImageChunk(data []byte) ([]byte, error) {
	return Encode(ImageChunk, data)
}

// DeviceInfoPayload is the JSON body of a DEVICE_INFO message.
type DeviceInfoPayload struct {
	Name string `json:"name"`
}

// NewDeviceInfo builds a DEVICE_INFO message announcing this device's
// display name.
func NewDeviceInfo(name string) ([]byte, error) {
	body, err := json.Marshal(DeviceInfoPayload{Name: name})
	if err != nil {
		return nil, protoerr.Wrap("protocol: encode device info", "", err)
	}
	return Encode(DeviceInfo, body)
}

// DecodeDeviceInfo parses a DEVICE_INFO message's JSON payload.
func DecodeDeviceInfo(payload []byte) (DeviceInfoPayload, error) {
	var body DeviceInfoPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return DeviceInfoPayload{}, protoerr.Wrap("protocol: decode device info", "", protoerr.ErrProtocolViolation)
	}
	return body, nil
}

// ImageSendStartPayload is the JSON body of an IMAGE_SEND_START message,
// announcing the metadata of an image transfer about to begin.
type ImageSendStartPayload struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	TotalBytes int64  `json:"totalBytes"`
	MimeType   string `json:"mimeType"`
}

// NewImageSendStart builds an IMAGE_SEND_START message.
func NewImageSendStart(width, height int, totalBytes int64, mimeType string) ([]byte, error) {
	body, err := json.Marshal(ImageSendStartPayload{
		Width:      width,
		Height:     height,
		TotalBytes: totalBytes,
		MimeType:   mimeType,
	})
	if err != nil {
		return nil, protoerr.Wrap("protocol: encode image send start", "", err)
	}
	return Encode(ImageSendStart, body)
}

// DecodeImageSendStart parses an IMAGE_SEND_START message's JSON payload.
func DecodeImageSendStart(payload []byte) (ImageSendStartPayload, error) {
	var body ImageSendStartPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return ImageSendStartPayload{}, protoerr.Wrap("protocol: decode image send start", "", protoerr.ErrProtocolViolation)
	}
	return body, nil
}
