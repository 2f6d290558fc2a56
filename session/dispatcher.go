package session

import (
	"github.com/universal-clipboard/uclip/events"
	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protoerr"
	"github.com/universal-clipboard/uclip/protocol"
)

// runDispatcher is the single reader task from spec.md §4.5/§5: it owns
// the receive cipher exclusively, classifying every inbound message and
// driving replies, ACK completion, and image reassembly. Any decode or
// protocol-level failure terminates the session — the transport layer
// has already decided this peer's nonce stream can no longer be trusted
// past a malformed plaintext frame.
func (s *Session) runDispatcher() {
	for {
		plaintext, err := s.transport.Receive()
		if err != nil {
			s.logger().WithError(err).Warn("session: dispatcher read failed")
			s.terminate(err)
			return
		}

		msg, err := protocol.Decode(plaintext)
		if err != nil {
			s.logger().WithError(err).Warn("session: dispatcher decode failed")
			s.terminate(err)
			return
		}

		if !s.handle(msg) {
			return
		}
	}
}

// handle dispatches one decoded message. It returns false if the
// session has terminated and the dispatcher loop must stop.
func (s *Session) handle(msg *protocol.Message) bool {
	switch msg.Type {
	case protocol.ClipboardSend:
		return s.handleClipboardSend(msg.Payload)
	case protocol.ClipboardAck:
		if s.completeAck(&s.pendingTextAck, nil) {
			events.Emit(s.sink, events.ClipboardSent{Bytes: len(msg.Payload)})
		}
		return true
	case protocol.Ping:
		return s.reply(protocol.NewPong())
	case protocol.Pong:
		return true
	case protocol.DeviceInfo:
		return s.handleDeviceInfo(msg.Payload)
	case protocol.ErrorMessage:
		return s.handleRemoteError(string(msg.Payload))
	case protocol.ImageSendStart:
		return s.handleImageSendStart(msg.Payload)
	case protocol.ImageChunk:
		return s.handleImageChunk(msg.Payload)
	case protocol.ImageSendEnd:
		return s.handleImageSendEnd()
	case protocol.ImageAck:
		s.mu.Lock()
		total := s.pendingImageBytes
		s.mu.Unlock()
		if s.completeAck(&s.pendingImageAck, nil) {
			events.Emit(s.sink, events.ImageSent{TotalBytes: total})
		}
		return true
	default:
		s.terminate(protoerr.Wrap("session: dispatch", s.peer, protoerr.ErrProtocolViolation))
		return false
	}
}

func (s *Session) reply(frame []byte, err error) bool {
	if err != nil {
		s.terminate(err)
		return false
	}
	s.enqueue(frame)
	return true
}

func (s *Session) handleClipboardSend(payload []byte) bool {
	text := string(payload)
	if err := s.clipboard.WriteText(text); err != nil {
		s.logger().WithError(err).Warn("session: clipboard write failed")
		errFrame, encErr := protocol.NewError(err.Error())
		return s.reply(errFrame, encErr)
	}
	events.Emit(s.sink, events.ClipboardReceived{Text: text})
	ackFrame, err := protocol.NewClipboardAck()
	return s.reply(ackFrame, err)
}

func (s *Session) handleDeviceInfo(payload []byte) bool {
	body, err := protocol.DecodeDeviceInfo(payload)
	if err != nil {
		s.terminate(err)
		return false
	}
	s.mu.Lock()
	s.remoteName = body.Name
	s.mu.Unlock()
	events.Emit(s.sink, events.DeviceInfoReceived{Name: body.Name})
	return true
}

// handleRemoteError applies spec.md §4.5's ERROR priority: an abort
// during active image reassembly takes precedence, since that is the
// transfer the peer is almost certainly complaining about; otherwise
// it completes whichever local send is outstanding, and finally falls
// back to a bare RemoteError notification.
func (s *Session) handleRemoteError(text string) bool {
	s.mu.Lock()
	reassemblyActive := s.reassembly != nil
	s.reassembly = nil
	s.mu.Unlock()

	if reassemblyActive {
		events.Emit(s.sink, events.ImageTransferFailed{Reason: text})
		return true
	}

	remoteErr := protoerr.Wrap("session: remote error", s.peer, protoerr.ErrRemoteError)
	if s.completeAck(&s.pendingImageAck, remoteErr) {
		events.Emit(s.sink, events.ImageTransferFailed{Reason: text})
		return true
	}
	if s.completeAck(&s.pendingTextAck, remoteErr) {
		return true
	}

	events.Emit(s.sink, events.RemoteError{Text: text})
	return true
}

func (s *Session) handleImageSendStart(payload []byte) bool {
	s.mu.Lock()
	if s.reassembly != nil {
		s.mu.Unlock()
		errFrame, err := protocol.NewError("image transfer already in progress")
		return s.reply(errFrame, err)
	}
	s.mu.Unlock()

	body, err := protocol.DecodeImageSendStart(payload)
	if err != nil {
		s.terminate(err)
		return false
	}
	if err := limits.ValidateImageSize(body.TotalBytes); err != nil {
		errFrame, encErr := protocol.NewError(err.Error())
		return s.reply(errFrame, encErr)
	}

	s.mu.Lock()
	s.reassembly = newReassembly(body.Width, body.Height, body.TotalBytes, body.MimeType)
	s.mu.Unlock()
	events.Emit(s.sink, events.ImageTransferStarted{TotalBytes: body.TotalBytes})
	return true
}

func (s *Session) handleImageChunk(payload []byte) bool {
	s.mu.Lock()
	r := s.reassembly
	s.mu.Unlock()
	if r == nil {
		errFrame, err := protocol.NewError("image chunk without an active transfer")
		return s.reply(errFrame, err)
	}

	if !r.append(payload, limits.MaxImageBytes) {
		s.mu.Lock()
		s.reassembly = nil
		s.mu.Unlock()
		events.Emit(s.sink, events.ImageTransferFailed{Reason: "declared size exceeded"})
		errFrame, err := protocol.NewError("declared size exceeded")
		return s.reply(errFrame, err)
	}
	events.Emit(s.sink, events.ImageTransferProgress{
		BytesTransferred: int64(len(r.buffer)),
		BytesTotal:       r.declaredTotal,
	})
	return true
}

func (s *Session) handleImageSendEnd() bool {
	s.mu.Lock()
	r := s.reassembly
	s.reassembly = nil
	s.mu.Unlock()
	if r == nil {
		errFrame, err := protocol.NewError("image end without an active transfer")
		return s.reply(errFrame, err)
	}
	if int64(len(r.buffer)) != r.declaredTotal {
		events.Emit(s.sink, events.ImageTransferFailed{Reason: "incomplete transfer"})
		errFrame, err := protocol.NewError("incomplete transfer")
		return s.reply(errFrame, err)
	}

	if err := s.clipboard.WriteImagePNG(r.buffer); err != nil {
		s.logger().WithError(err).Warn("session: clipboard image write failed")
		events.Emit(s.sink, events.ImageTransferFailed{Reason: err.Error()})
		errFrame, encErr := protocol.NewError(err.Error())
		return s.reply(errFrame, encErr)
	}
	events.Emit(s.sink, events.ImageReceived{TotalBytes: r.declaredTotal})
	ackFrame, err := protocol.NewImageAck()
	return s.reply(ackFrame, err)
}

// completeAck delivers err (nil on success) to the pending ACK channel
// in slot, if one is installed, clearing the slot and returning whether
// one was in fact waiting.
func (s *Session) completeAck(slot *chan error, err error) bool {
	s.mu.Lock()
	ch := *slot
	*slot = nil
	s.mu.Unlock()
	if ch == nil {
		return false
	}
	ch <- err
	return true
}
