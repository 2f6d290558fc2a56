package clipboard

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Capacity tiers from spec.md §3: a mobile initiator's buffer holds up
// to 10 items, a desktop initiator's up to 5.
const (
	MobileBufferCapacity  = 10
	DesktopBufferCapacity = 5
)

// TimeProvider abstracts time.Now for deterministic buffer tests,
// matching the teacher's time-injection idiom used throughout the
// messaging and session layers.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard library clock.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Buffer is the bounded FIFO clipboard-item buffer described in
// spec.md §3: a monotonically increasing id per item, oldest evicted
// on overflow, nothing persisted.
type Buffer struct {
	mu           sync.Mutex
	items        []*Item
	capacity     int
	nextID       uint64
	timeProvider TimeProvider
}

// NewBuffer creates an empty buffer holding at most capacity items.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		capacity:     capacity,
		nextID:       1,
		timeProvider: DefaultTimeProvider{},
	}
}

// SetTimeProvider overrides the buffer's clock, for deterministic tests.
func (b *Buffer) SetTimeProvider(tp TimeProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeProvider = tp
}

// PushText appends a new text item, evicting the oldest item if the
// buffer is already at capacity, and returns it.
func (b *Buffer) PushText(text string) *Item {
	return b.push(&Item{Kind: KindText, Text: text})
}

// PushImage appends a new image item, evicting the oldest item if the
// buffer is already at capacity, and returns it.
func (b *Buffer) PushImage(png []byte, width, height int) *Item {
	return b.push(&Item{Kind: KindImage, PNG: png, Width: width, Height: height})
}

func (b *Buffer) push(item *Item) *Item {
	b.mu.Lock()
	defer b.mu.Unlock()

	item.ID = b.nextID
	b.nextID++
	item.Timestamp = b.timeProvider.Now()

	b.items = append(b.items, item)
	if len(b.items) > b.capacity {
		evicted := b.items[0]
		b.items = b.items[1:]
		logrus.WithFields(logrus.Fields{
			"evicted_id": evicted.ID,
			"kind":       evicted.Kind,
		}).Debug("clipboard: buffer capacity exceeded, evicted oldest item")
	}

	return item
}

// MarkSent sets the Sent flag of the buffered item with the given id; an
// id no longer in the buffer is ignored.
func (b *Buffer) MarkSent(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, item := range b.items {
		if item.ID == id {
			item.Sent = true
			return
		}
	}
}

// Items returns a snapshot of the buffer, oldest first.
func (b *Buffer) Items() []*Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Item, len(b.items))
	copy(out, b.items)
	return out
}

// Latest returns the most recently pushed item, or nil if the buffer is
// empty.
func (b *Buffer) Latest() *Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return nil
	}
	return b.items[len(b.items)-1]
}

// Len returns the number of items currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
