// Package clock abstracts the current time so that services can be
// tested against a fixed instant instead of the wall clock.
package clock

import "time"

// Clock supplies the current instant. All implementations return UTC
// so that reservation timestamps compare consistently regardless of
// the host timezone.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock frozen at the given instant, for tests.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
