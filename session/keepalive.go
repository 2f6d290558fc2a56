package session

import (
	"time"

	"github.com/universal-clipboard/uclip/protocol"
)

// runKeepalive pushes a PING onto the outbound queue every interval,
// per spec.md §5: it never waits synchronously for the matching PONG,
// since the dispatcher handles PONG replies independently and a missed
// one only shows up as the transport itself failing.
func (s *Session) runKeepalive(interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			frame, err := protocol.NewPing()
			if err != nil {
				continue
			}
			s.enqueue(frame)
		case <-s.done:
			return
		}
	}
}
