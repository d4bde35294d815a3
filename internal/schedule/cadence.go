package schedule

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrCadence is returned when two injections start closer than the minimum cadence.
var ErrCadence = errors.New("injections start closer than the minimum cadence")

// Span is an injection with the length of its waveform.
type Span struct {
	Injection Injection
	// Duration is the waveform length in seconds.
	Duration float64
}

// End returns the GPS time at which the injection ends.
func (s Span) End() float64 {
	return s.Injection.Time + s.Duration
}

// Gap is a short pause between the end of one injection and the start of the next one.
type Gap struct {
	Previous Injection
	Next     Injection
	Seconds  float64
}

// CheckCadence checks that consecutive injections start at least minCadence seconds apart.
//
// Spans are considered in time order. Every pair of injections starting too close makes the
// check fail with ErrCadence. Pairs where the next injection starts less than minCadence after
// the end of the previous one are returned as gaps.
func CheckCadence(spans []Span, minCadence float64) ([]Gap, error) {
	sorted := slices.Clone(spans)
	slices.SortStableFunc(sorted, func(a, b Span) int {
		return cmp.Compare(a.Injection.Time, b.Injection.Time)
	})

	var errs []error
	var gaps []Gap
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]

		if dt := next.Injection.Time - prev.Injection.Time; dt < minCadence {
			errs = append(errs, fmt.Errorf("%w: %q and %q start %g seconds apart", ErrCadence, prev.Injection, next.Injection, dt))
		}

		if dt := next.Injection.Time - prev.End(); dt < minCadence {
			gaps = append(gaps, Gap{Previous: prev.Injection, Next: next.Injection, Seconds: dt})
		}
	}

	return gaps, errors.Join(errs...)
}
