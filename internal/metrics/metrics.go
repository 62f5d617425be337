// Package metrics provides the pure numeric primitives shared by the
// scoring and analytics packages: weighted averages, clamping, min-max
// normalization, and entropy-based diversity.
package metrics

import (
	"math"

	"github.com/rotisserie/eris"
)

// WeightedAverage returns the weighted sum of values. Weights are expected
// to sum to 1.0; no renormalization is applied, so a non-normalized weight
// set produces a non-normalized result.
func WeightedAverage(values, weights []float64) (float64, error) {
	if len(values) != len(weights) {
		return 0, eris.Errorf("metrics: weighted average: %d values vs %d weights", len(values), len(weights))
	}

	var total float64
	for i, v := range values {
		total += v * weights[i]
	}
	return total, nil
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// NormalizeMinMax rescales a series to [0,1] via (v-min)/(max-min).
// A constant series maps to all zeros rather than NaN.
func NormalizeMinMax(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}

	lo, hi := series[0], series[0]
	for _, v := range series[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]float64, len(series))
	if hi == lo {
		return out
	}
	for i, v := range series {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// ShannonDiversity scores the evenness of a frequency distribution on a
// 0-100 scale: p_i = count_i/total, H = -sum(p*log2(p)), normalized by
// log2(number of populated categories). Zero-count categories are ignored.
// A distribution with a single populated category scores 0 (the 0/0 case
// is defined as 0, never NaN).
func ShannonDiversity(counts []int) float64 {
	total := 0
	categories := 0
	for _, c := range counts {
		if c > 0 {
			total += c
			categories++
		}
	}
	if total == 0 || categories <= 1 {
		return 0
	}

	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h / math.Log2(float64(categories)) * 100
}

// RatioOrZero returns num/den, or 0 when den is 0. Used where an absent
// denominator means "not computable" rather than an error.
func RatioOrZero(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
