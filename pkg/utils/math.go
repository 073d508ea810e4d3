package utils

import "math"

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Sum calculates the sum of a slice of float64 values
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// Mean calculates the mean of a slice of float64 values. Values are scaled by
// their peak magnitude first, so the mean of finite values is finite.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := MaxAbs(values)
	if peak == 0 || math.IsInf(peak, 0) {
		return Sum(values) / float64(len(values))
	}
	sum := 0.0
	for _, v := range values {
		sum += v / peak
	}
	return sum / float64(len(values)) * peak
}

// Variance calculates the population variance of a slice of float64 values.
// The result overflows once the spread exceeds ~1e154; use StdDev for large magnitudes.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// StdDev calculates the population standard deviation of a slice of float64
// values. It works on values scaled into [-1, 1] and rescales the result, so
// the deviation of finite values stays finite.
func StdDev(values []float64) float64 {
	peak := MaxAbs(values)
	if peak == 0 || math.IsInf(peak, 0) {
		return math.Sqrt(Variance(values))
	}
	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = v / peak
	}
	return math.Sqrt(Variance(scaled)) * peak
}

// MinMax returns the smallest and largest value. Both are 0 for an empty slice.
func MinMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// MaxAbs returns the largest absolute value in the slice
func MaxAbs(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// Linspace returns n evenly spaced samples over [start, stop], both endpoints
// included. n == 1 yields [start]; n <= 0 yields nil.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// RoundToMultiple rounds value to the nearest multiple of m, resolving ties
// to the even multiple (1050 -> 1000, 1150 -> 1200 for m = 100).
func RoundToMultiple(value, m int) int {
	if m == 0 {
		return value
	}
	return int(math.RoundToEven(float64(value)/float64(m))) * m
}

// Round rounds a float64 to the specified number of decimal places
func Round(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}
