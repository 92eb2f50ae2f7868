package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TInterval returns the two-sided Student-t confidence interval for a mean
// estimated from n observations with sample standard deviation sd.
// With n <= 1 there is no variance estimate and the interval collapses to
// the point estimate.
func TInterval(mean, sd float64, n int, level float64) (lo, hi float64) {
	if n <= 1 {
		return mean, mean
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-level)/2)
	half := t * sd / math.Sqrt(float64(n))
	return mean - half, mean + half
}

// validLevel reports whether level is a usable confidence level.
func validLevel(level float64) bool {
	return level > 0 && level < 1
}
