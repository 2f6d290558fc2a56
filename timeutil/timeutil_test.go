package timeutil

import (
	"testing"
	"time"
)

func TestRealProviderNow(t *testing.T) {
	var p Provider = Real{}
	now := time.Now()
	got := p.Now()
	if got.Sub(now) > time.Second {
		t.Errorf("Real.Now() too far from time.Now(): %v", got)
	}
}

func TestRealProviderTicker(t *testing.T) {
	p := Real{}
	ticker := p.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}
}

func TestFakeAdvanceReleasesSleep(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	done := make(chan struct{})
	go func() {
		f.Sleep(10 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Sleep returned before Advance")
	case <-time.After(20 * time.Millisecond):
	}

	f.Advance(10 * time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sleep never returned after Advance")
	}
}

func TestFakeTickerFiresOnAdvance(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ticker := f.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
		t.Fatal("ticker fired before any Advance")
	default:
	}

	f.Advance(10 * time.Millisecond)
	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("ticker never fired after Advance")
	}

	f.Advance(25 * time.Millisecond)
	count := 0
	for {
		select {
		case <-ticker.C():
			count++
			continue
		default:
		}
		break
	}
	// Two periods elapse (at 20ms and 30ms), but the channel holds one
	// undelivered tick, as time.Ticker's does.
	if count != 1 {
		t.Errorf("ticks after advancing 25ms past a 10ms period = %d, want 1", count)
	}
}

func TestFakeTickerStopIsFinal(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ticker := f.NewTicker(5 * time.Millisecond)
	ticker.Stop()

	f.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Error("stopped ticker fired after Advance")
	default:
	}
}

func TestFakeNowReflectsAdvance(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(base)
	if !f.Now().Equal(base) {
		t.Fatalf("Now() = %v, want %v", f.Now(), base)
	}
	f.Advance(time.Hour)
	if want := base.Add(time.Hour); !f.Now().Equal(want) {
		t.Errorf("Now() after Advance(1h) = %v, want %v", f.Now(), want)
	}
}
