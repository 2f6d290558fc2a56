package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/universal-clipboard/uclip/clipboard"
	"github.com/universal-clipboard/uclip/config"
	"github.com/universal-clipboard/uclip/events"
	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protocol"
	"github.com/universal-clipboard/uclip/protoerr"
	"github.com/universal-clipboard/uclip/timeutil"
	"github.com/universal-clipboard/uclip/transport"
)

// ErrClosed is returned by an in-flight send when the session terminates
// before its ACK arrives, whether by transport failure or Close.
var ErrClosed = errors.New("session: closed")

// ErrSendInProgress is returned when a second send_text or send_image is
// attempted while one of the same kind is already outstanding.
var ErrSendInProgress = errors.New("session: a send of this kind is already in progress")

// Session owns one paired connection's encrypted transport and runs the
// three long-running tasks spec.md §5 requires: an outbound writer, the
// single-reader dispatcher, and (once Start is called) a keepalive
// ticker.
type Session struct {
	transport *transport.EncryptedTransport
	clipboard clipboard.Collaborator
	sink      events.Sink
	peer      string

	outbound *outboundQueue
	clock    timeutil.Provider

	mu                sync.Mutex
	pendingTextAck    chan error
	pendingImageAck   chan error
	pendingImageBytes int64
	remoteName        string
	reassembly        *reassembly

	closeOnce sync.Once
	done      chan struct{}
	err       error
}

// New wraps an already-handshaken transport. peer is used only in log
// fields and wrapped errors.
func New(t *transport.EncryptedTransport, cb clipboard.Collaborator, sink events.Sink, peer string) *Session {
	return &Session{
		transport: t,
		clipboard: cb,
		sink:      sink,
		peer:      peer,
		outbound:  newOutboundQueue(),
		clock:     timeutil.Real{},
		done:      make(chan struct{}),
	}
}

// WithClock overrides the session's timeutil.Provider, used by tests to
// drive the keepalive ticker deterministically. It must be called
// before Start.
func (s *Session) WithClock(clock timeutil.Provider) *Session {
	s.clock = clock
	return s
}

// Start launches the outbound writer, the dispatcher, and a keepalive
// ticker that emits PING every interval. It returns immediately; the
// three tasks run until the session terminates.
func (s *Session) Start(interval time.Duration) {
	go s.runWriter()
	go s.runDispatcher()
	go s.runKeepalive(interval)
}

// Done returns a channel that closes once the session has terminated,
// whether by a transport error, a protocol violation, or Close.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the termination reason after Done has closed. It is nil
// only if called before termination.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// RemoteName returns the peer's display name cached from its DEVICE_INFO
// message, or "" if none has arrived yet.
func (s *Session) RemoteName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteName
}

// Close cancels the session's tasks and closes the underlying
// transport. It is idempotent.
func (s *Session) Close() error {
	s.terminate(ErrClosed)
	return nil
}

func (s *Session) terminate(cause error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.err = cause
		textAck, imageAck := s.pendingTextAck, s.pendingImageAck
		s.pendingTextAck, s.pendingImageAck = nil, nil
		s.reassembly = nil
		s.mu.Unlock()

		if textAck != nil {
			textAck <- cause
		}
		if imageAck != nil {
			imageAck <- cause
		}

		s.outbound.close()
		_ = s.transport.Close()
		close(s.done)
	})
}

func (s *Session) enqueue(frame []byte) {
	s.outbound.push(frame)
}

// SendDeviceInfo exchanges DEVICE_INFO directly over the transport,
// bypassing the dispatcher, before Start is called — spec.md §4.6 runs
// this exchange between the handshake completing and the dispatcher
// starting. It writes localName then reads and returns the peer's name.
func SendDeviceInfo(t *transport.EncryptedTransport, localName string) (remoteName string, err error) {
	frame, err := protocol.NewDeviceInfo(localName)
	if err != nil {
		return "", err
	}
	if err := t.Send(frame); err != nil {
		return "", err
	}

	plaintext, err := t.Receive()
	if err != nil {
		return "", err
	}
	msg, err := protocol.Decode(plaintext)
	if err != nil {
		return "", err
	}
	if msg.Type != protocol.DeviceInfo {
		return "", protoerr.Wrap("session: exchange device info", "", protoerr.ErrProtocolViolation)
	}
	body, err := protocol.DecodeDeviceInfo(msg.Payload)
	if err != nil {
		return "", err
	}
	return body.Name, nil
}

// SendText installs pending_text_ack, writes CLIPBOARD_SEND, and waits
// up to timeout for the matching CLIPBOARD_ACK.
func (s *Session) SendText(text string, timeout time.Duration) error {
	ch, err := s.installPendingAck(&s.pendingTextAck)
	if err != nil {
		return err
	}

	frame, err := protocol.NewClipboardSend(text)
	if err != nil {
		s.clearPendingAck(&s.pendingTextAck)
		return err
	}
	s.enqueue(frame)

	return s.awaitAck(ch, &s.pendingTextAck, timeout)
}

// SendImage installs pending_image_ack, sends IMAGE_SEND_START, splits
// png into ≤ limits.MaxImageChunkPayload chunks sent in order (invoking
// onProgress after each), sends IMAGE_SEND_END, and waits for IMAGE_ACK
// within the size-scaled timeout from config.ImageAckTimeout.
func (s *Session) SendImage(png []byte, width, height int, onProgress func(sent, total int64)) error {
	total := int64(len(png))
	if err := limits.ValidateImageSize(total); err != nil {
		return err
	}

	ch, err := s.installPendingAck(&s.pendingImageAck)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pendingImageBytes = total
	s.mu.Unlock()

	startFrame, err := protocol.NewImageSendStart(width, height, total, "image/png")
	if err != nil {
		s.clearPendingAck(&s.pendingImageAck)
		return err
	}
	s.enqueue(startFrame)

	var sent int64
	for sent < total {
		end := sent + limits.MaxImageChunkPayload
		if end > total {
			end = total
		}
		chunkFrame, err := protocol.NewImageChunk(png[sent:end])
		if err != nil {
			s.clearPendingAck(&s.pendingImageAck)
			return err
		}
		s.enqueue(chunkFrame)
		sent = end
		if onProgress != nil {
			onProgress(sent, total)
		}
	}

	endFrame, err := protocol.NewImageSendEnd()
	if err != nil {
		s.clearPendingAck(&s.pendingImageAck)
		return err
	}
	s.enqueue(endFrame)

	return s.awaitAck(ch, &s.pendingImageAck, config.ImageAckTimeout(total))
}

func (s *Session) installPendingAck(slot *chan error) (chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *slot != nil {
		return nil, ErrSendInProgress
	}
	ch := make(chan error, 1)
	*slot = ch
	return ch, nil
}

func (s *Session) clearPendingAck(slot *chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*slot = nil
}

func (s *Session) awaitAck(ch chan error, slot *chan error, timeout time.Duration) error {
	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		s.clearPendingAck(slot)
		return protoerr.Wrap("session: await ack", s.peer, protoerr.ErrTimeout)
	case <-s.done:
		return protoerr.Wrap("session: await ack", s.peer, ErrClosed)
	}
}

func (s *Session) logger() *logrus.Entry {
	return logrus.WithField("peer", s.peer)
}
