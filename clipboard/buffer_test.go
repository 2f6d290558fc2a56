package clipboard

import (
	"testing"
	"time"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func TestBufferPushAssignsMonotonicIDs(t *testing.T) {
	b := NewBuffer(DesktopBufferCapacity)

	first := b.PushText("a")
	second := b.PushText("b")

	if first.ID == 0 || second.ID == 0 {
		t.Fatal("PushText() assigned a zero id")
	}
	if second.ID <= first.ID {
		t.Errorf("second.ID = %d, want > first.ID = %d", second.ID, first.ID)
	}
}

func TestBufferEvictsOldestOnOverflow(t *testing.T) {
	b := NewBuffer(2)

	first := b.PushText("one")
	b.PushText("two")
	third := b.PushText("three")

	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("Len() = %d, want 2", len(items))
	}
	if items[0].ID == first.ID {
		t.Error("oldest item was not evicted")
	}
	if items[len(items)-1].ID != third.ID {
		t.Error("newest item missing after eviction")
	}
}

func TestBufferMarkSent(t *testing.T) {
	b := NewBuffer(DesktopBufferCapacity)
	item := b.PushText("hello")

	if item.Sent {
		t.Fatal("new item should not start Sent")
	}

	b.MarkSent(item.ID)

	latest := b.Latest()
	if !latest.Sent {
		t.Error("MarkSent() did not flip Sent")
	}
}

func TestBufferLatestOnEmpty(t *testing.T) {
	b := NewBuffer(DesktopBufferCapacity)
	if got := b.Latest(); got != nil {
		t.Errorf("Latest() = %v, want nil on empty buffer", got)
	}
}

func TestBufferPushImageRecordsDimensions(t *testing.T) {
	b := NewBuffer(MobileBufferCapacity)
	png := []byte{0x89, 0x50, 0x4E, 0x47}

	item := b.PushImage(png, 640, 480)

	if item.Kind != KindImage {
		t.Errorf("Kind = %v, want KindImage", item.Kind)
	}
	if item.Width != 640 || item.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", item.Width, item.Height)
	}
	if item.Size() != len(png) {
		t.Errorf("Size() = %d, want %d", item.Size(), len(png))
	}
}

func TestBufferUsesInjectedTimeProvider(t *testing.T) {
	b := NewBuffer(DesktopBufferCapacity)
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.SetTimeProvider(fixedTime{want})

	item := b.PushText("hello")
	if !item.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", item.Timestamp, want)
	}
}
