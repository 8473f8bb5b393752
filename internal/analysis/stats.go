package analysis

import (
	"math"
	"sort"
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// orZero maps NaN and infinities to 0 so values survive JSON encoding.
func orZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}

func finiteValues(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// Count returns the number of finite values.
func Count(xs []float64) int {
	n := 0
	for _, v := range xs {
		if isFinite(v) {
			n++
		}
	}
	return n
}

// Sum adds the finite values; an empty input sums to 0.
func Sum(xs []float64) float64 {
	var s float64
	for _, v := range xs {
		if isFinite(v) {
			s += v
		}
	}
	return s
}

// Mean averages the finite values, or returns NaN when there are none.
func Mean(xs []float64) float64 {
	n := Count(xs)
	if n == 0 {
		return math.NaN()
	}
	return Sum(xs) / float64(n)
}

// Max returns the largest finite value, or NaN.
func Max(xs []float64) float64 {
	out := math.NaN()
	for _, v := range xs {
		if isFinite(v) && (math.IsNaN(out) || v > out) {
			out = v
		}
	}
	return out
}

// Min returns the smallest finite value, or NaN.
func Min(xs []float64) float64 {
	out := math.NaN()
	for _, v := range xs {
		if isFinite(v) && (math.IsNaN(out) || v < out) {
			out = v
		}
	}
	return out
}

// StdDev is the standard deviation with ddof delta degrees of freedom:
// 0 for the population form, 1 for the sample form. NaN when n <= ddof.
func StdDev(xs []float64, ddof int) float64 {
	vals := finiteValues(xs)
	n := len(vals)
	if n <= ddof {
		return math.NaN()
	}
	m := Mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-ddof))
}

// Percentile interpolates linearly between the closest ranks, p in [0,100].
func Percentile(xs []float64, p float64) float64 {
	vals := finiteValues(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	rank := p / 100 * float64(len(vals)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	return vals[lo] + (vals[hi]-vals[lo])*(rank-float64(lo))
}

// CoefficientOfVariation is the population standard deviation as a
// percentage of the mean. Zero when the mean is not positive.
func CoefficientOfVariation(xs []float64) float64 {
	m := Mean(xs)
	if !(m > 0) {
		return 0
	}
	return StdDev(xs, 0) / m * 100
}

// Normalize rescales values onto [0,1] by min-max. A degenerate range yields
// all zeros, and non-finite entries map to 0.
func Normalize(xs []float64) []float64 {
	out := make([]float64, len(xs))
	lo, hi := Min(xs), Max(xs)
	if !isFinite(lo) || !isFinite(hi) || hi <= lo {
		return out
	}
	for i, v := range xs {
		if isFinite(v) {
			out[i] = (v - lo) / (hi - lo)
		}
	}
	return out
}

// Round rounds half to even at the given number of decimal places.
func Round(v float64, places int) float64 {
	if !isFinite(v) {
		return v
	}
	p := math.Pow10(places)
	return math.RoundToEven(v*p) / p
}

// DenseRankDesc ranks values from largest (1) down, equal values sharing a rank
// and no gaps between ranks.
func DenseRankDesc(xs []float64) []int {
	distinct := finiteValues(xs)
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))
	rankOf := make(map[float64]int, len(distinct))
	r := 0
	for i, v := range distinct {
		if i == 0 || v != distinct[i-1] {
			r++
			rankOf[v] = r
		}
	}
	out := make([]int, len(xs))
	for i, v := range xs {
		out[i] = rankOf[v]
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func percentOf(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
