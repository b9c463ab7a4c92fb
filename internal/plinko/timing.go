package plinko

import (
	"math"
	"time"
)

// Timing ties the simulation's step unit to the driver's tick rate.
// A drop is expected to take between MinFall and MaxFall when the driver
// calls Tick exactly TickRate times per second.
type Timing struct {
	TickRate      int
	MinFall       time.Duration
	MaxFall       time.Duration
	OverrunFactor int
}

// DefaultTiming is 60 ticks per second over a 3-10 second fall.
func DefaultTiming() Timing {
	return Timing{
		TickRate:      DefaultTickRate,
		MinFall:       DefaultMinFall,
		MaxFall:       DefaultMaxFall,
		OverrunFactor: DefaultOverrunFactor,
	}
}

// Normalize replaces unusable values with defaults so step counts stay finite and positive.
func (t Timing) Normalize() Timing {
	d := DefaultTiming()
	if t.TickRate <= 0 {
		t.TickRate = d.TickRate
	}
	if t.MinFall <= 0 {
		t.MinFall = d.MinFall
	}
	if t.MaxFall <= 0 {
		t.MaxFall = d.MaxFall
	}
	if t.MaxFall < t.MinFall {
		t.MinFall, t.MaxFall = t.MaxFall, t.MinFall
	}
	if t.OverrunFactor <= 0 {
		t.OverrunFactor = d.OverrunFactor
	}
	return t
}

// TickInterval is the wall-clock period between ticks.
func (t Timing) TickInterval() time.Duration {
	t = t.Normalize()
	return time.Second / time.Duration(t.TickRate)
}

// MinSteps is the step count of the shortest fall at TickRate.
func (t Timing) MinSteps() int {
	t = t.Normalize()
	return stepsFor(t.MinFall, t.TickRate)
}

// MaxSteps is the step count of the longest fall at TickRate.
func (t Timing) MaxSteps() int {
	t = t.Normalize()
	return stepsFor(t.MaxFall, t.TickRate)
}

func stepsFor(d time.Duration, rate int) int {
	n := int(math.Round(d.Seconds() * float64(rate)))
	if n < 1 {
		n = 1
	}
	return n
}
