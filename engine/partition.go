package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/mystream/stream"
)

// ErrPartition reports a size that cannot be split evenly among workers.
var ErrPartition = errors.New("engine: invalid partition")

// RoundUp returns the smallest multiple of vectorWidth*workers that is at
// least n and at least one full unit. It returns 0 when workers or
// vectorWidth is not positive or when the result does not fit in an int.
func RoundUp(n, workers, vectorWidth int) int {
	if workers <= 0 || vectorWidth <= 0 || workers > math.MaxInt/vectorWidth {
		return 0
	}
	unit := workers * vectorWidth
	if n <= unit {
		return unit
	}
	if n > math.MaxInt-(unit-1) {
		return 0
	}
	return (n + unit - 1) / unit * unit
}

// Partition splits [0,n) into workers contiguous ranges of n/workers
// elements. n must already be a multiple of workers*vectorWidth.
func Partition(n, workers, vectorWidth int) ([]stream.Range, error) {
	if n <= 0 || workers <= 0 || vectorWidth <= 0 {
		return nil, fmt.Errorf("%w: n=%d workers=%d vector width=%d", ErrPartition, n, workers, vectorWidth)
	}
	if n%(workers*vectorWidth) != 0 {
		return nil, fmt.Errorf("%w: %d is not a multiple of %d*%d", ErrPartition, n, workers, vectorWidth)
	}

	batch := n / workers
	ranges := make([]stream.Range, workers)
	for w := range ranges {
		ranges[w] = stream.Range{Start: w * batch, End: (w + 1) * batch}
	}
	return ranges, nil
}
