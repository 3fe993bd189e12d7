// Package clock reads the monotonic clock that times every kernel repetition.
//
// Timing is the whole point of a run, so there is no silent fallback: if the
// clock cannot be read, Now returns ErrUnavailable and the caller aborts.
package clock

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the monotonic clock cannot be read or is
// observed to run backwards.
var ErrUnavailable = errors.New("clock: monotonic clock unavailable")

// Stamp is a monotonic reading in nanoseconds from an arbitrary origin.
// Stamps are only comparable within one process.
type Stamp int64

// Now returns the current monotonic reading.
func Now() (Stamp, error) {
	ns, err := monotonicNanos()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Stamp(ns), nil
}

// Milliseconds returns end-start in milliseconds.
func Milliseconds(start, end Stamp) float64 {
	return float64(end-start) / 1e6
}

// Check reads the clock twice and verifies it does not run backwards.
// Drivers call it once before measuring.
func Check() error {
	first, err := Now()
	if err != nil {
		return err
	}
	second, err := Now()
	if err != nil {
		return err
	}
	if second < first {
		return fmt.Errorf("%w: reading went backwards by %d ns", ErrUnavailable, first-second)
	}
	return nil
}
