package clock

import "time"

// Clock provides the current time so session expiry and event timestamps
// can be pinned in tests
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC, so stored and serialized
// timestamps do not depend on the host's zone
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
