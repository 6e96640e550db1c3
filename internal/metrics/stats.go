package metrics

import (
	"math"
	"sort"
)

// TradingDaysPerYear annualises daily statistics.
const TradingDaysPerYear = 252

// Mean is the arithmetic average. It returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev divides by N. Used for rolling z-scores.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := Mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - avg) * (v - avg)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// SampleStdDev divides by N-1 and returns 0 when fewer than two values exist.
func SampleStdDev(values []float64) float64 {
	return math.Sqrt(SampleVariance(values))
}

func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := Mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - avg) * (v - avg)
	}
	return sum / float64(len(values)-1)
}

// SampleCovariance of two equally long series; 0 when they are shorter than two
// or differ in length.
func SampleCovariance(a, b []float64) float64 {
	if len(a) < 2 || len(a) != len(b) {
		return 0
	}
	ma, mb := Mean(a), Mean(b)
	var sum float64
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(len(a)-1)
}

// DownsideDeviation is the root mean square of the returns below target,
// counting every observation in the denominator.
func DownsideDeviation(returns []float64, target float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		if d := r - target; d < 0 {
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(len(returns)))
}

// Quantile uses linear interpolation between order statistics, position
// p*(n-1) on the sorted sample. p is clamped to [0,1].
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// safeDiv returns 0 instead of NaN or Inf for a zero denominator.
func safeDiv(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return num / den
}
