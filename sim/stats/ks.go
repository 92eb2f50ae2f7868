package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// KSResult is a two-sample Kolmogorov–Smirnov outcome.
type KSResult struct {
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	N         int     `json:"n" yaml:"n"` // size of the first sample
	M         int     `json:"m" yaml:"m"` // size of the second sample
}

// KolmogorovSmirnov compares the empirical distributions of x and y.
// The statistic is the supremum absolute difference between the two ECDFs;
// the two-sided p-value comes from the asymptotic Kolmogorov distribution
// with Stephens' small-sample correction.
func KolmogorovSmirnov(x, y []float64) (KSResult, error) {
	if len(x) == 0 || len(y) == 0 {
		return KSResult{}, fmt.Errorf("kolmogorov-smirnov: empty sample (n=%d, m=%d): %w", len(x), len(y), ErrInvalidInput)
	}
	xs := sortedCopy(x)
	ys := sortedCopy(y)
	d := stat.KolmogorovSmirnov(xs, nil, ys, nil)

	res := KSResult{Statistic: d, N: len(x), M: len(y)}
	if math.IsNaN(d) {
		res.PValue = math.NaN()
		return res, nil
	}
	n, m := float64(len(x)), float64(len(y))
	en := math.Sqrt(n * m / (n + m))
	res.PValue = kolmogorovSurvival((en + 0.12 + 0.11/en) * d)
	return res, nil
}

// kolmogorovSurvival evaluates Q(λ) = 2 Σ (-1)^(j-1) exp(-2 j² λ²).
// The series does not converge for small λ, where Q is 1.
func kolmogorovSurvival(lambda float64) float64 {
	const (
		eps1     = 1e-3
		eps2     = 1e-8
		maxTerms = 100
	)
	a2 := -2.0 * lambda * lambda
	fac := 2.0
	sum := 0.0
	prev := 0.0
	for j := 1; j <= maxTerms; j++ {
		term := fac * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= eps1*prev || math.Abs(term) <= eps2*sum {
			return math.Min(1, math.Max(0, sum))
		}
		fac = -fac
		prev = math.Abs(term)
	}
	return 1.0
}

func sortedCopy(vals []float64) []float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	return s
}
