package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRanks_TiesShareMeanRank(t *testing.T) {
	ranks, ties := averageRanks([]float64{10, 20, 20, 5})
	assert.Equal(t, []float64{2, 3.5, 3.5, 1}, ranks)
	assert.Equal(t, []int{2}, ties)
}

func TestAlignPair_TruncatesLongerHead(t *testing.T) {
	tests := []struct {
		name        string
		x, y        []float64
		wantLen     int
		wantDropped int
	}{
		{"x longer", []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3}, 3, 2},
		{"y longer", []float64{1, 2}, []float64{1, 2, 3, 4}, 2, 2},
		{"equal", []float64{1, 2, 3}, []float64{3, 2, 1}, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ax, ay, dropped := AlignPair(tt.x, tt.y)
			assert.Len(t, ax, tt.wantLen)
			assert.Len(t, ay, tt.wantLen)
			assert.Equal(t, tt.wantDropped, dropped)
			// head truncation keeps the leading rows
			assert.Equal(t, tt.x[:tt.wantLen], ax)
			assert.Equal(t, tt.y[:tt.wantLen], ay)
		})
	}
}

func TestAlignSamples_CommonLengthIsMinimum(t *testing.T) {
	samples := [][]float64{{1, 2, 3, 4, 5}, {1, 2, 3, 4, 5}, {7, 8, 9}}
	aligned, minLen, truncated := AlignSamples(samples)
	assert.Equal(t, 3, minLen)
	assert.True(t, truncated)
	for _, s := range aligned {
		assert.Len(t, s, 3)
	}

	_, minLen, truncated = AlignSamples([][]float64{{1, 2}, {3, 4}, {5, 6}})
	assert.Equal(t, 2, minLen)
	assert.False(t, truncated)
}

func TestWilcoxon_IdenticalSamples_Degenerate(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		x := make([]float64, n)
		for i := range x {
			x[i] = float64(i + 1)
		}
		_, err := Wilcoxon(x, append([]float64(nil), x...))
		if !errors.Is(err, ErrDegenerateInput) {
			t.Errorf("n=%d: err = %v, want ErrDegenerateInput", n, err)
		}
	}
}

func TestWilcoxon_Scenario_IdenticalThreeElements(t *testing.T) {
	_, err := Wilcoxon([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestWilcoxon_EmptySample_InvalidInput(t *testing.T) {
	_, err := Wilcoxon(nil, []float64{1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWilcoxon_ExactPValue(t *testing.T) {
	tests := []struct {
		name     string
		x, y     []float64
		wantStat float64
		wantP    float64
	}{
		// all differences positive, ranks 1..5: T = 0, p = 2/32
		{"one-sided shift", []float64{1, 2, 3, 4, 5}, []float64{0, 0, 0, 0, 0}, 0, 0.0625},
		// differences 1,-2,3,4: W- = 2, P(T<=2) = 3/16
		{"mixed signs", []float64{1, 0, 3, 4}, []float64{0, 2, 0, 0}, 2, 0.375},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Wilcoxon(tt.x, tt.y)
			require.NoError(t, err)
			assert.True(t, res.Exact)
			assert.Equal(t, tt.wantStat, res.Statistic)
			assert.InDelta(t, tt.wantP, res.PValue, 1e-12)
		})
	}
}

func TestWilcoxon_TiesUseNormalApproximation(t *testing.T) {
	// |d| all equal: ranks 2,2,2, W+ = 4, W- = 2
	// var = 3*4*7/24 - (27-3)/48 = 3, z = -1/sqrt(3)
	res, err := Wilcoxon([]float64{2, 2, 0}, []float64{1, 1, 1})
	require.NoError(t, err)
	assert.False(t, res.Exact)
	assert.Equal(t, 2.0, res.Statistic)
	assert.InDelta(t, 0.5637, res.PValue, 1e-3)
}

func TestWilcoxon_DifferentLengths_ReportsDroppedRows(t *testing.T) {
	res, err := Wilcoxon([]float64{5, 6, 7, 8, 9}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pairs)
	assert.Equal(t, 2, res.Dropped)
}

func TestWilcoxon_ZeroDifferencesDiscarded(t *testing.T) {
	res, err := Wilcoxon([]float64{1, 2, 3, 9}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Pairs)
	assert.Equal(t, 1, res.NonZero)
	assert.Equal(t, 1.0, res.PValue)
}

func TestFriedman_TwoSamples_InvalidInput(t *testing.T) {
	_, err := Friedman([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Friedman([][]float64{{1, 2, 3}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Friedman(nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFriedman_EmptySample_InvalidInput(t *testing.T) {
	_, err := Friedman([][]float64{{1, 2}, {}, {3, 4}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFriedman_ReportsCommonLength(t *testing.T) {
	// GIVEN three samples of lengths 5, 5 and 3
	samples := [][]float64{
		{1, 4, 2, 8, 5},
		{2, 3, 6, 1, 9},
		{3, 7, 1},
	}

	// WHEN the Friedman test runs
	res, err := Friedman(samples)
	require.NoError(t, err)

	// THEN the common length is the minimum sample length
	assert.Equal(t, 3, res.CommonLength)
	assert.True(t, res.Truncated)
	assert.Equal(t, 3, res.Samples)
}

func TestFriedman_ConsistentOrdering_KnownStatistic(t *testing.T) {
	// rank sums 3, 6, 9 over n=3 blocks, k=3: Q = 126/3 - 36 = 6
	res, err := Friedman([][]float64{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, res.Statistic, 1e-12)
	// chi-square(2) survival at 6 is exp(-3)
	assert.InDelta(t, math.Exp(-3), res.PValue, 1e-9)
	assert.False(t, res.Truncated)
}

func TestFriedman_FullyTiedBlocks_Degenerate(t *testing.T) {
	_, err := Friedman([][]float64{{1, 2}, {1, 2}, {1, 2}})
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestFriedman_TieCorrection(t *testing.T) {
	// block 1 ranks 1,2,3; block 2 ranks 1.5,1.5,3
	// R = 2.5, 3.5, 6; SSR = 54.5; raw = 12/24*54.5 - 24 = 3.25
	// C = 1 - 6/(2*3*8) = 0.875
	res, err := Friedman([][]float64{{1, 1}, {2, 1}, {3, 5}})
	require.NoError(t, err)
	assert.InDelta(t, 3.25/0.875, res.Statistic, 1e-12)
}
