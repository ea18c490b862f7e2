// Package clock abstracts the time source so stores can be tested with
// deterministic timestamps.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time. Production code injects Real(); tests
// inject a Fake with explicit control over time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Real returns a Clock backed by the system time, in UTC.
func Real() Clock { return realClock{} }

// Fake is a manually driven Clock. Every call to Now advances the time by
// Step, so consecutive timestamps are strictly ordered.
type Fake struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewFake creates a Fake clock starting at start that advances by step on
// each read.
func NewFake(start time.Time, step time.Duration) *Fake {
	return &Fake{now: start, Step: step}
}

// Now returns the current fake time, then advances it by Step.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.now
	f.now = f.now.Add(f.Step)
	return t
}

// Advance moves the fake time forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
