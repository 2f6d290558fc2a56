// Package timeutil supplies an injectable clock so the keepalive ticker
// (spec.md §5) and the auto-reconnect backoff loop (spec.md §4.6) can be
// driven by a fake clock in tests instead of real wall time.
package timeutil

import "time"

// Provider is the subset of time's package-level API that session and
// controller depend on for scheduling. Production code uses Real;
// tests substitute a fake to make timing-sensitive behavior (the
// keepalive interval, the reconnect delay and its attempt cap)
// deterministic.
type Provider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	Sleep(d time.Duration)
}

// Ticker is the subset of *time.Ticker that callers need, so a fake
// Provider can hand back a channel it controls directly.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real implements Provider using the actual system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

func (Real) Sleep(d time.Duration) { time.Sleep(d) }

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
