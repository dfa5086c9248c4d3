package model

import (
	"fmt"
	"math"
)

// Interval is a one-dimensional numeric range.
//
// Intervals are not validated: From > To yields a negative Length and is
// carried through every computation unchanged.
type Interval struct {
	From float64
	To   float64
}

// Length returns To - From.
func (i Interval) Length() float64 {
	return i.To - i.From
}

// Overlap returns the signed length of the intersection of i and o.
//
// The value is negative when the intervals are disjoint (it is then minus the
// gap between them) and zero when they touch.
func (i Interval) Overlap(o Interval) float64 {
	return math.Min(i.To, o.To) - math.Max(i.From, o.From)
}

// String returns a string representation of the Interval.
func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g)", i.From, i.To)
}

// CloneIntervals returns a copy of src. A nil src yields an empty, non-nil slice.
func CloneIntervals(src []Interval) []Interval {
	out := make([]Interval, len(src))
	copy(out, src)
	return out
}
