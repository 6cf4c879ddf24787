package control

import "time"

// Clock abstracts the monotonic time source and the cadence sleep so
// the cycle driver and calibrator are testable without real delays.
type Clock interface {
	// Now must be monotonic: time.Time carries Go's monotonic
	// reading, so Sub between two values never goes negative.
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
