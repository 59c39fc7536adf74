package authcore

import "time"

// Clock is the single time source for every expiry comparison in the engine.
// Inject a fixed or stepping implementation in tests; production builds use
// the system clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the wall-clock implementation used when no clock is
// supplied to the builder.
func SystemClock() Clock {
	return systemClock{}
}
