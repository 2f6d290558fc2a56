package transport

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestFramedConnRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverFramed := NewFramedConn(server)
	clientFramed := NewFramedConn(client)

	messages := [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte("x"), 65535),
	}

	done := make(chan error, 1)
	go func() {
		for _, m := range messages {
			if err := clientFramed.WriteFrame(m); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for _, want := range messages {
		got, err := serverFramed.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() error: %v", err)
		}
		if len(want) == 0 {
			if len(got) != 0 {
				t.Errorf("ReadFrame() = %v, want empty", got)
			}
			continue
		}
		if !bytes.Equal(got, want) {
			t.Errorf("ReadFrame() length = %d, want %d", len(got), len(want))
		}
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("writer goroutine error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for writer goroutine")
	}
}

func TestFramedConnRejectsOversizedFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	clientFramed := NewFramedConn(client)
	oversized := make([]byte, 65536)

	err := clientFramed.WriteFrame(oversized)
	if err == nil {
		t.Fatal("expected error writing an oversized frame")
	}
}
