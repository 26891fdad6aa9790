package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Float | constraints.Integer
}

func Argmax[T cmp.Ordered](arr []T) (argmax int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmax]) == 1 {
			argmax = i
		}
	}
	return
}

func Average[T Number](s []T) (mean float64) {
	if len(s) == 0 {
		return 0
	}
	for i := range s {
		mean += float64(s[i])
	}
	mean /= float64(len(s))
	return
}

func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}

// Chunks splits [0, n) into at most parts contiguous half-open ranges of
// near-equal length. Empty ranges are never returned.
func Chunks(n, parts int) [][2]int {
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	ranges := make([][2]int, 0, parts)
	for p := range parts {
		from := p * n / parts
		to := (p + 1) * n / parts
		if to > from {
			ranges = append(ranges, [2]int{from, to})
		}
	}
	return ranges
}
