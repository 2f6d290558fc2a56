package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/universal-clipboard/uclip/limits"
	"github.com/universal-clipboard/uclip/protoerr"
)

// FramedConn reads and writes length-prefixed frames over a net.Conn: each
// frame is a 2-byte big-endian length followed by that many payload bytes,
// capped at limits.MaxFrameLength.
type FramedConn struct {
	conn net.Conn
}

// NewFramedConn wraps conn for length-prefixed frame I/O.
func NewFramedConn(conn net.Conn) *FramedConn {
	return &FramedConn{conn: conn}
}

// WriteFrame writes a single length-prefixed frame. Concurrent calls from
// multiple goroutines are not safe; callers serialize writes (the session
// dispatcher owns a single outbound writer goroutine per connection).
func (f *FramedConn) WriteFrame(payload []byte) error {
	if err := limits.ValidateFrameLength(payload); err != nil {
		return err
	}

	header := make([]byte, 2)
	binary.BigEndian.PutUint16(header, uint16(len(payload)))

	if _, err := f.conn.Write(header); err != nil {
		return fmt.Errorf("transport: write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := f.conn.Write(payload); err != nil {
		return fmt.Errorf("transport: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads a single length-prefixed frame, looping on short reads
// with io.ReadFull rather than trusting a single net.Conn.Read call to
// return the full header or payload.
func (f *FramedConn) ReadFrame() ([]byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(f.conn, header); err != nil {
		return nil, fmt.Errorf("transport: read frame header: %w: %w", protoerr.ErrFraming, err)
	}

	length := binary.BigEndian.Uint16(header)
	if length == 0 {
		return nil, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(f.conn, payload); err != nil {
		return nil, fmt.Errorf("transport: read frame payload: %w: %w", protoerr.ErrFraming, err)
	}
	return payload, nil
}

// Close closes the underlying connection.
func (f *FramedConn) Close() error {
	return f.conn.Close()
}

// Conn returns the underlying net.Conn, for deadline management.
func (f *FramedConn) Conn() net.Conn {
	return f.conn
}
