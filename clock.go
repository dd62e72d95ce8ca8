package eink

import (
	"math"
	"time"
)

const (
	// TimeBox is the period after which a Tick repeats.
	TimeBox = 10 * time.Second

	// MinPulse is the minimum spacing between two commits of the same pixel.
	MinPulse = 260 * time.Millisecond

	// RetryEpsilon is added to the retry time of deferred regions, so the
	// retry lands after the pulse window has closed.
	RetryEpsilon Tick = 10
)

// Tick is a phase within the [TimeBox] period. Ticks can only be compared if
// the time between them is less than half the period.
type Tick uint16

const halfTicks = 1 << 15

// TickAt reduces a duration to its phase within the time box. Negative
// durations count back from the end of the period.
func TickAt(d time.Duration) Tick {
	var (
		period = TimeBox.Seconds()
		unit   = math.Mod(math.Mod(d.Seconds(), period)/period+1, 1)
	)
	return Tick(unit * math.MaxUint16)
}

// Add offsets t by d, wrapping around the time box.
func (t Tick) Add(d time.Duration) Tick {
	return t + TickAt(d)
}

// Before reports whether t is at or before u.
func (t Tick) Before(u Tick) bool {
	return u-t < halfTicks
}

// Before is [Tick.Before] as a function.
func Before(a, b Tick) bool {
	return a.Before(b)
}

// Clock is a monotonic time source.
type Clock interface {
	// Now returns the time elapsed since an arbitrary fixed origin.
	Now() time.Duration
}

type monotonicClock struct {
	origin time.Time
}

// MonotonicClock returns a Clock backed by the process monotonic clock.
func MonotonicClock() Clock {
	return monotonicClock{origin: time.Now()}
}

func (c monotonicClock) Now() time.Duration {
	return time.Since(c.origin)
}
