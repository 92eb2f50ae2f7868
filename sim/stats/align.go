package stats

// AlignPair head-truncates the longer of x and y to the length of the shorter.
// dropped is the number of rows removed from the longer sample.
// The returned slices share backing arrays with the inputs.
func AlignPair(x, y []float64) (ax, ay []float64, dropped int) {
	switch {
	case len(x) > len(y):
		return x[:len(y)], y, len(x) - len(y)
	case len(y) > len(x):
		return x, y[:len(x)], len(y) - len(x)
	default:
		return x, y, 0
	}
}

// AlignSamples head-truncates every sample to the minimum sample length.
// minLen is the common length actually used; truncated reports whether any
// sample lost rows. Returns minLen = 0 for an empty input.
func AlignSamples(samples [][]float64) (aligned [][]float64, minLen int, truncated bool) {
	if len(samples) == 0 {
		return nil, 0, false
	}
	minLen = len(samples[0])
	for _, s := range samples[1:] {
		if len(s) < minLen {
			minLen = len(s)
		}
	}
	aligned = make([][]float64, len(samples))
	for i, s := range samples {
		if len(s) > minLen {
			truncated = true
		}
		aligned[i] = s[:minLen]
	}
	return aligned, minLen, truncated
}
