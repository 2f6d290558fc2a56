package session

// reassembly tracks an in-progress inbound image transfer, per spec.md
// §4.5's `{ buffer, declared_total, width, height, mime }` state. It is
// only ever touched from the dispatcher goroutine, so it needs no lock
// of its own.
type reassembly struct {
	buffer        []byte
	declaredTotal int64
	width         int
	height        int
	mime          string
}

func newReassembly(width, height int, totalBytes int64, mime string) *reassembly {
	return &reassembly{
		buffer:        make([]byte, 0, totalBytes),
		declaredTotal: totalBytes,
		width:         width,
		height:        height,
		mime:          mime,
	}
}

// append adds chunk to the buffer. ok is false if doing so would exceed
// the declared total or the hard cap; the caller drops the reassembly
// in that case.
func (r *reassembly) append(chunk []byte, maxImageBytes int64) bool {
	newLen := int64(len(r.buffer)) + int64(len(chunk))
	if newLen > r.declaredTotal || newLen > maxImageBytes {
		return false
	}
	r.buffer = append(r.buffer, chunk...)
	return true
}
