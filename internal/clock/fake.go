package clock

import "time"

// FakeClock reports a fixed instant so tests get stable created_at and
// updated_at values on jobs and applications.
type FakeClock struct {
	now time.Time
}

// NewFakeClock pins the clock at t (normalized to UTC).
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the pinned instant forward, e.g. to order a second
// submission after the first.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
