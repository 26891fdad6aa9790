package utils

// Simpson integrates f over [left, right] with the composite Simpson rule on
// n intervals; odd n is rounded up.
func Simpson(f func(float64) float64, left, right float64, n int) float64 {
	if n < 2 {
		n = 2
	}
	if n%2 == 1 {
		n++
	}
	h := (right - left) / float64(n)
	sum := f(left) + f(right)
	for i := 1; i < n; i++ {
		x := left + float64(i)*h
		if i%2 == 1 {
			sum += 4 * f(x)
		} else {
			sum += 2 * f(x)
		}
	}
	return sum * h / 3
}
