package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// wilcoxonExactLimit is the largest number of non-zero differences for which
// the exact null distribution is enumerated (only when there are no ties).
const wilcoxonExactLimit = 50

// RankTestResult is the (statistic, p-value) pair of a rank test.
type RankTestResult struct {
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
}

// WilcoxonResult is a signed-rank test outcome plus the alignment applied
// to the inputs before testing.
type WilcoxonResult struct {
	RankTestResult `yaml:",inline"`
	Pairs          int  `json:"pairs" yaml:"pairs"`       // pairs after alignment
	Dropped        int  `json:"dropped" yaml:"dropped"`   // rows cut from the longer sample
	NonZero        int  `json:"non_zero" yaml:"non_zero"` // pairs with a non-zero difference
	Exact          bool `json:"exact" yaml:"exact"`
}

// Wilcoxon runs the two-sided Wilcoxon signed-rank test on paired samples.
//
// Samples of different length are aligned by cutting the tail of the longer
// one. Zero differences are discarded before ranking. The statistic is
// min(W+, W-). If every difference is zero the test is undefined and
// ErrDegenerateInput is returned.
func Wilcoxon(x, y []float64) (WilcoxonResult, error) {
	if len(x) == 0 || len(y) == 0 {
		return WilcoxonResult{}, fmt.Errorf("wilcoxon: empty sample (x=%d, y=%d): %w", len(x), len(y), ErrInvalidInput)
	}
	ax, ay, dropped := AlignPair(x, y)
	res := WilcoxonResult{Pairs: len(ax), Dropped: dropped}

	diffs := make([]float64, 0, len(ax))
	for i := range ax {
		if d := ax[i] - ay[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return res, fmt.Errorf("wilcoxon: all %d paired differences are zero: %w", len(ax), ErrDegenerateInput)
	}
	res.NonZero = len(diffs)

	abs := make([]float64, len(diffs))
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, ties := averageRanks(abs)
	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	res.Statistic = math.Min(wPlus, wMinus)

	n := len(diffs)
	if n <= wilcoxonExactLimit && len(ties) == 0 {
		res.Exact = true
		res.PValue = math.Min(1, 2*signedRankCDF(n, int(res.Statistic)))
		return res, nil
	}

	nf := float64(n)
	mean := nf * (nf + 1) / 4
	variance := nf * (nf + 1) * (2*nf + 1) / 24
	for _, t := range ties {
		tf := float64(t)
		variance -= (tf*tf*tf - tf) / 48
	}
	z := (res.Statistic - mean) / math.Sqrt(variance)
	res.PValue = math.Min(1, 2*distuv.UnitNormal.CDF(-math.Abs(z)))
	return res, nil
}

// signedRankCDF returns P(T <= t) for the signed-rank statistic of n untied
// non-zero differences, counting subsets of {1..n} by their rank sum.
func signedRankCDF(n, t int) float64 {
	maxSum := n * (n + 1) / 2
	counts := make([]float64, maxSum+1)
	counts[0] = 1
	for r := 1; r <= n; r++ {
		for s := maxSum; s >= r; s-- {
			counts[s] += counts[s-r]
		}
	}
	if t > maxSum {
		t = maxSum
	}
	below := 0.0
	for s := 0; s <= t; s++ {
		below += counts[s]
	}
	return below / math.Pow(2, float64(n))
}
