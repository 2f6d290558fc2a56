package session

// runWriter is the single outbound writer task from spec.md §5: it owns
// the send cipher exclusively, draining outbound in submission order so
// two goroutines never race to seal frames on the same CipherState. A
// write failure terminates the whole session, since the send nonce
// counter can no longer be trusted.
func (s *Session) runWriter() {
	for {
		frame, ok := s.outbound.pop()
		if !ok {
			return
		}
		if err := s.transport.Send(frame); err != nil {
			s.logger().WithError(err).Warn("session: outbound write failed")
			s.terminate(err)
			return
		}
	}
}
