package stats

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"
)

// ColumnSummary describes the distribution of one replication column.
type ColumnSummary struct {
	Name    string  `json:"name" yaml:"name"`
	N       int     `json:"n" yaml:"n"`
	Mean    float64 `json:"mean" yaml:"mean"`
	StdDev  float64 `json:"std_dev" yaml:"std_dev"` // sample standard deviation, 0 when N == 1
	CILower float64 `json:"ci_lower" yaml:"ci_lower"`
	CIUpper float64 `json:"ci_upper" yaml:"ci_upper"`
	Median  float64 `json:"median" yaml:"median"`
	P25     float64 `json:"p25" yaml:"p25"`
	P75     float64 `json:"p75" yaml:"p75"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
}

// Summarize computes per-column summaries with a Student-t confidence
// interval for the mean. names and columns are parallel.
func Summarize(names []string, columns [][]float64, level float64) ([]ColumnSummary, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d names for %d columns: %w", len(names), len(columns), ErrInvalidInput)
	}
	if !validLevel(level) {
		return nil, fmt.Errorf("confidence level must be in (0, 1), got %v: %w", level, ErrInvalidInput)
	}
	out := make([]ColumnSummary, 0, len(columns))
	for i, col := range columns {
		if len(col) == 0 {
			return nil, fmt.Errorf("column %q is empty: %w", names[i], ErrInvalidInput)
		}
		s := ColumnSummary{Name: names[i], N: len(col)}
		s.Mean, _ = mstats.Mean(col)
		if len(col) > 1 {
			s.StdDev, _ = mstats.StandardDeviationSample(col)
		}
		s.CILower, s.CIUpper = TInterval(s.Mean, s.StdDev, len(col), level)
		s.Median, _ = mstats.Median(col)
		s.P25, _ = mstats.Percentile(col, 25)
		s.P75, _ = mstats.Percentile(col, 75)
		s.Min, _ = mstats.Min(col)
		s.Max, _ = mstats.Max(col)
		out = append(out, s)
	}
	return out, nil
}

// HoursToDays converts a duration in hours to days.
func HoursToDays(hours float64) float64 {
	return hours / 24
}
