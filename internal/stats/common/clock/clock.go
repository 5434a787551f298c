package clock

import "time"

// Clock is the timestamp provider used for query timestamps and bucket lookups.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock returns CurrentTime until it is moved with Advance or Set.
type MockClock struct {
	CurrentTime time.Time
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

func (c *MockClock) Set(t time.Time) {
	c.CurrentTime = t
}
