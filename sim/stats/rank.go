package stats

import "sort"

// averageRanks assigns 1-based ranks to values, giving tied values the mean
// of the ranks they span. tieSizes holds the size of every tie group (> 1).
func averageRanks(values []float64) (ranks []float64, tieSizes []int) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && values[idx[j]] == values[idx[i]] {
			j++
		}
		// positions i..j-1 share ranks i+1..j
		avg := float64(i+1+j) / 2.0
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		if j-i > 1 {
			tieSizes = append(tieSizes, j-i)
		}
		i = j
	}
	return ranks, tieSizes
}
