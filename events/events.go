package events

// Event is implemented by every concrete event type the core emits.
// The marker method exists only to close the set to this package's
// types — callers type-switch on the concrete type to act on an event.
type Event interface {
	isEvent()
}

// Sink receives emitted events. A nil Sink is valid: Emit is a no-op.
type Sink func(Event)

// Emit calls sink(ev) if sink is non-nil, so callers throughout the
// core never need a nil check at the call site.
func Emit(sink Sink, ev Event) {
	if sink != nil {
		sink(ev)
	}
}

// ServerStarted fires once the responder's listener is accepting
// connections for a freshly generated pairing code.
type ServerStarted struct {
	PairingCode string
	Port        int
}

func (ServerStarted) isEvent() {}

// DeviceConnected fires once a handshake (pairing or reconnect)
// completes and the session transitions to Connected.
type DeviceConnected struct {
	Name string
}

func (DeviceConnected) isEvent() {}

// DeviceDisconnected fires when an established session ends, whether by
// user action, a transport failure, or the peer closing the connection.
type DeviceDisconnected struct{}

func (DeviceDisconnected) isEvent() {}

// HandshakeFailed fires when a Noise handshake does not complete —
// PSK mismatch, a tampered message, or a transport error mid-handshake.
type HandshakeFailed struct {
	Reason string
}

func (HandshakeFailed) isEvent() {}

// DeviceInfoReceived fires when the dispatcher receives the peer's
// DEVICE_INFO message and caches its display name.
type DeviceInfoReceived struct {
	Name string
}

func (DeviceInfoReceived) isEvent() {}

// ClipboardReceived fires when an inbound CLIPBOARD_SEND is written to
// the local clipboard.
type ClipboardReceived struct {
	Text string
}

func (ClipboardReceived) isEvent() {}

// ClipboardSent fires when a CLIPBOARD_ACK completes a pending local
// send_text. Bytes is the length of the ACK's payload, which
// protocol.NewClipboardAck leaves empty, so it is 0; the length of the
// sent text is not reported (see DESIGN.md's "ClipboardSent event byte
// count" decision).
type ClipboardSent struct {
	Bytes int
}

func (ClipboardSent) isEvent() {}

// ImageTransferStarted fires when the dispatcher accepts an inbound
// IMAGE_SEND_START and allocates a reassembly buffer.
type ImageTransferStarted struct {
	TotalBytes int64
}

func (ImageTransferStarted) isEvent() {}

// ImageTransferProgress fires on the receiving side after each inbound
// IMAGE_CHUNK is appended to the reassembly buffer. The sending side
// emits no ImageTransferProgress event; it reports progress through
// SendImage's onProgress callback.
type ImageTransferProgress struct {
	BytesTransferred int64
	BytesTotal       int64
}

func (ImageTransferProgress) isEvent() {}

// ImageReceived fires when an inbound image reassembly finishes and the
// bytes are written to the local clipboard.
type ImageReceived struct {
	TotalBytes int64
}

func (ImageReceived) isEvent() {}

// ImageSent fires when a local send_image completes with an IMAGE_ACK.
type ImageSent struct {
	TotalBytes int64
}

func (ImageSent) isEvent() {}

// ImageTransferFailed fires when an image transfer — inbound or
// outbound — aborts before completion.
type ImageTransferFailed struct {
	Reason string
}

func (ImageTransferFailed) isEvent() {}

// RemoteError fires when the dispatcher receives an inbound ERROR
// message that neither aborts an active image reassembly nor fails a
// pending image or text send.
type RemoteError struct {
	Text string
}

func (RemoteError) isEvent() {}
