package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// minFriedmanSamples is the smallest number of related samples accepted.
const minFriedmanSamples = 3

// FriedmanResult is a Friedman test outcome plus the common sample length
// the inputs were aligned to.
type FriedmanResult struct {
	RankTestResult `yaml:",inline"`
	Samples        int  `json:"samples" yaml:"samples"`
	CommonLength   int  `json:"common_length" yaml:"common_length"`
	Truncated      bool `json:"truncated" yaml:"truncated"`
}

// Friedman runs the Friedman rank test over k >= 3 related samples.
//
// All samples are cut to the shortest sample's length first; the length used
// is reported in CommonLength. Values are ranked within each row (block),
// with average ranks for ties, and the statistic is tie-corrected. The
// p-value is the chi-square survival function with k-1 degrees of freedom.
func Friedman(samples [][]float64) (FriedmanResult, error) {
	if len(samples) < minFriedmanSamples {
		return FriedmanResult{}, fmt.Errorf("friedman: need at least %d samples, got %d: %w", minFriedmanSamples, len(samples), ErrInvalidInput)
	}
	for i, s := range samples {
		if len(s) == 0 {
			return FriedmanResult{}, fmt.Errorf("friedman: sample %d is empty: %w", i, ErrInvalidInput)
		}
	}

	aligned, n, truncated := AlignSamples(samples)
	k := len(aligned)
	res := FriedmanResult{Samples: k, CommonLength: n, Truncated: truncated}

	rankSums := make([]float64, k)
	block := make([]float64, k)
	tieTerm := 0.0
	for b := 0; b < n; b++ {
		for j := range aligned {
			block[j] = aligned[j][b]
		}
		ranks, ties := averageRanks(block)
		for j, r := range ranks {
			rankSums[j] += r
		}
		for _, t := range ties {
			tf := float64(t)
			tieTerm += tf*tf*tf - tf
		}
	}

	nf, kf := float64(n), float64(k)
	correction := 1 - tieTerm/(nf*kf*(kf*kf-1))
	if correction <= 0 {
		return res, fmt.Errorf("friedman: every block is fully tied: %w", ErrDegenerateInput)
	}
	ssr := 0.0
	for _, r := range rankSums {
		ssr += r * r
	}
	q := (12/(nf*kf*(kf+1))*ssr - 3*nf*(kf+1)) / correction

	res.Statistic = q
	res.PValue = distuv.ChiSquared{K: kf - 1}.Survival(q)
	return res, nil
}
