package stats

import "math"

// Summary holds the statistics of a timing sample sequence, in the unit of
// the samples (milliseconds throughout this module).
type Summary struct {
	Count    int
	Mean     float64
	Variance float64 // population variance
	StdDev   float64
	Min      float64
	Max      float64
}

// Calculate computes every Summary field in one pass using Welford's
// algorithm. An empty input yields the zero Summary.
func Calculate(samples []float64) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}

	var (
		mean   float64
		m2     float64
		minVal = samples[0]
		maxVal = samples[0]
	)
	for i, x := range samples {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)

		if x < minVal {
			minVal = x
		}
		if x > maxVal {
			maxVal = x
		}
	}

	variance := m2 / float64(n)
	if variance < 0 {
		variance = 0
	}
	return Summary{
		Count:    n,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Min:      minVal,
		Max:      maxVal,
	}
}

// Average returns the arithmetic mean, or 0 for no samples.
func Average(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, x := range samples {
		sum += x
	}
	return sum / float64(len(samples))
}

// Variance returns the population variance (divides by n).
func Variance(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	avg := Average(samples)
	var sum float64
	for _, x := range samples {
		d := x - avg
		sum += d * d
	}
	return sum / float64(len(samples))
}

// StdDev returns the population standard deviation.
func StdDev(samples []float64) float64 {
	return math.Sqrt(Variance(samples))
}

// Minimum returns the smallest sample, or 0 for no samples.
func Minimum(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	m := samples[0]
	for _, x := range samples[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Maximum returns the largest sample, or 0 for no samples.
func Maximum(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	m := samples[0]
	for _, x := range samples[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
