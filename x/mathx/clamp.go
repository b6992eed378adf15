package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MeanInt returns the integer mean of xs, 0 for an empty slice.
func MeanInt(xs []int) int {
	if len(xs) == 0 {
		return 0
	}
	acc := 0
	for _, x := range xs {
		acc += x
	}
	return acc / len(xs)
}
