package tracking

import (
	"sync"
	"time"
)

// Clock is the time source the simulator runs on.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// ManualClock only moves when Advance is called. Tickers fire at most once
// per Advance, like a time.Ticker that drops ticks for slow receivers.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[*manualTicker]struct{}
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, tickers: make(map[*manualTicker]struct{})}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("tracking: non-positive ticker interval")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTicker{clock: m, every: d, next: m.now.Add(d), ch: make(chan time.Time, 1)}
	m.tickers[t] = struct{}{}
	return t
}

// Advance moves the clock forward by d and fires every ticker that is due.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)
	for t := range m.tickers {
		if m.now.Before(t.next) {
			continue
		}
		for !m.now.Before(t.next) {
			t.next = t.next.Add(t.every)
		}
		select {
		case t.ch <- m.now:
		default:
		}
	}
}

// ActiveTickers counts tickers that have not been stopped.
func (m *ManualClock) ActiveTickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

type manualTicker struct {
	clock *ManualClock
	every time.Duration
	next  time.Time
	ch    chan time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	delete(t.clock.tickers, t)
}
