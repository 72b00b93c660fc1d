// Package clock supplies the wall clock in the store's time zone. Day and week
// boundaries are computed in that zone.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type localClock struct {
	loc *time.Location
}

func Local(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return localClock{loc: loc}
}

func (c localClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Manual is a settable clock for tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
