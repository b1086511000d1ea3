// Package ratelimit implements a dual sliding-window call budget shared by
// every request hitting the same upstream service. One instance exists per
// upstream (search, AI), injected into the providers that call it.
package ratelimit

import (
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// Status is the introspection payload for the rate-limit endpoint.
type Status struct {
	CanMakeRequest       bool    `json:"can_make_request"`
	WaitTime             float64 `json:"wait_time"`
	MinuteCallsRemaining int     `json:"minute_calls_remaining"`
	DailyCallsRemaining  int     `json:"daily_calls_remaining"`
}

// Limiter tracks request timestamps over a per-minute and a per-day window.
// The minute window has wait semantics; the day window is a hard stop.
// All state is in-memory and process-lifetime.
type Limiter struct {
	mu           sync.Mutex
	maxPerMinute int
	maxPerDay    int
	minuteCalls  []time.Time
	dailyCalls   []time.Time
	now          func() time.Time
}

func New(maxPerMinute, maxPerDay int) *Limiter {
	return &Limiter{
		maxPerMinute: maxPerMinute,
		maxPerDay:    maxPerDay,
		now:          time.Now,
	}
}

// NewWithClock builds a limiter with an injected clock. Used in tests.
func NewWithClock(maxPerMinute, maxPerDay int, now func() time.Time) *Limiter {
	l := New(maxPerMinute, maxPerDay)
	l.now = now
	return l
}

// prune drops timestamps older than their window. Caller must hold mu.
func (l *Limiter) prune(now time.Time) {
	minuteAgo := now.Add(-minuteWindow)
	i := 0
	for i < len(l.minuteCalls) && l.minuteCalls[i].Before(minuteAgo) {
		i++
	}
	l.minuteCalls = l.minuteCalls[i:]

	dayAgo := now.Add(-dayWindow)
	j := 0
	for j < len(l.dailyCalls) && l.dailyCalls[j].Before(dayAgo) {
		j++
	}
	l.dailyCalls = l.dailyCalls[j:]
}

// Allow reports whether a request could be made right now without exceeding
// either window. It does not reserve a slot; call Record after the request
// is actually performed.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)
	return len(l.minuteCalls) < l.maxPerMinute && len(l.dailyCalls) < l.maxPerDay
}

// Record appends the current time to both windows. Call only after the
// rate-limited operation actually ran, never on a mere Allow check.
func (l *Limiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.minuteCalls = append(l.minuteCalls, now)
	l.dailyCalls = append(l.dailyCalls, now)
}

// TimeUntilAllowed returns how long until the minute window opens up, or zero
// when the limiter is open or blocked only by the day window.
func (l *Limiter) TimeUntilAllowed() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)
	if len(l.minuteCalls) < l.maxPerMinute {
		return 0
	}
	wait := minuteWindow - now.Sub(l.minuteCalls[0])
	if wait < 0 {
		return 0
	}
	return wait
}

// DailyExhausted reports whether the day window alone blocks new requests.
// There is no wait for this window; callers must degrade instead of sleeping.
func (l *Limiter) DailyExhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.dailyCalls) >= l.maxPerDay
}

func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)

	canRequest := len(l.minuteCalls) < l.maxPerMinute && len(l.dailyCalls) < l.maxPerDay
	var wait time.Duration
	if len(l.minuteCalls) >= l.maxPerMinute {
		wait = minuteWindow - now.Sub(l.minuteCalls[0])
		if wait < 0 {
			wait = 0
		}
	}

	return Status{
		CanMakeRequest:       canRequest,
		WaitTime:             wait.Seconds(),
		MinuteCallsRemaining: l.maxPerMinute - len(l.minuteCalls),
		DailyCallsRemaining:  l.maxPerDay - len(l.dailyCalls),
	}
}
