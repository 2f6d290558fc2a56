package timeutil

import (
	"sync"
	"time"
)

// Fake is a manually-advanced Provider for deterministic tests. Sleep
// blocks until a test's call to Advance has moved the clock past the
// requested duration; a Ticker returned by NewTicker fires the same
// way. Not for production use — Advance must be driven explicitly.
type Fake struct {
	mu      sync.Mutex
	base    time.Time
	elapsed time.Duration
	waiters []fakeWaiter
	tickers []*fakeTicker
}

type fakeWaiter struct {
	deadline time.Duration
	done     chan struct{}
}

// NewFake returns a Fake clock starting at base.
func NewFake(base time.Time) *Fake {
	return &Fake{base: base}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.base.Add(f.elapsed)
}

// Advance moves the fake clock forward by d, releasing any Sleep calls
// and firing any Ticker whose period has elapsed in the interval. As with
// time.Ticker, a Ticker's channel holds at most one undelivered tick;
// further ticks that elapse before it is read are dropped.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.elapsed += d
	now := f.elapsed

	var toRelease []chan struct{}
	remaining := f.waiters[:0]
	for _, w := range f.waiters {
		if w.deadline <= now {
			toRelease = append(toRelease, w.done)
		} else {
			remaining = append(remaining, w)
		}
	}
	f.waiters = remaining

	tickers := append([]*fakeTicker(nil), f.tickers...)
	f.mu.Unlock()

	for _, ch := range toRelease {
		close(ch)
	}
	for _, t := range tickers {
		t.maybeFire(now)
	}
}

func (f *Fake) Sleep(d time.Duration) {
	f.mu.Lock()
	done := make(chan struct{})
	f.waiters = append(f.waiters, fakeWaiter{deadline: f.elapsed + d, done: done})
	f.mu.Unlock()
	<-done
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{period: d, next: d, ch: make(chan time.Time, 1)}
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	return t
}

type fakeTicker struct {
	mu      sync.Mutex
	period  time.Duration
	next    time.Duration
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) maybeFire(now time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	for now >= t.next {
		select {
		case t.ch <- time.Time{}:
		default:
		}
		t.next += t.period
	}
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

var _ Provider = (*Fake)(nil)
