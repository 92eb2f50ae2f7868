package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/spf13/cast"
)

// NumericMode selects how a ReplicationSet's table cells are typed.
type NumericMode int

const (
	// ModeInt truncates every cell to a whole number.
	ModeInt NumericMode = iota
	// ModeFloat keeps cells as read.
	ModeFloat
)

func (m NumericMode) String() string {
	if m == ModeFloat {
		return "float"
	}
	return "int"
}

// ReplicationSet holds the runs of one patient, one row per run, columns in
// Variables order.
type ReplicationSet struct {
	Cluster ClusterID
	mode    NumericMode
	table   [][]float64
}

// Len returns the number of runs.
func (s *ReplicationSet) Len() int {
	return len(s.table)
}

// Mode returns the numeric mode the table was coerced to.
func (s *ReplicationSet) Mode() NumericMode {
	return s.mode
}

// Table returns a copy of the runs × variables table.
func (s *ReplicationSet) Table() [][]float64 {
	out := make([][]float64, len(s.table))
	for i, row := range s.table {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Column returns the values of v across runs.
func (s *ReplicationSet) Column(v Variable) []float64 {
	j := variableIndex(v)
	if j < 0 {
		return nil
	}
	col := make([]float64, len(s.table))
	for i, row := range s.table {
		col[i] = row[j]
	}
	return col
}

// Columns returns every variable column in Variables order.
func (s *ReplicationSet) Columns() [][]float64 {
	cols := make([][]float64, len(Variables))
	for j, v := range Variables {
		cols[j] = s.Column(v)
	}
	return cols
}

// Result returns run i as a ReplicationResult, truncating float cells.
func (s *ReplicationSet) Result(i int) ReplicationResult {
	row := s.table[i]
	return ReplicationResult{
		PreVentilation:  int(row[0]),
		Ventilation:     int(row[1]),
		PostVentilation: int(row[2]),
		ICUStay:         int(row[3]),
		PostICUStay:     int(row[4]),
	}
}

func variableIndex(v Variable) int {
	for j, candidate := range Variables {
		if candidate == v {
			return j
		}
	}
	return -1
}

// coerceCell converts any cell to a number. Anything that cannot be read as
// a finite number becomes 0.
func coerceCell(cell any, mode NumericMode) float64 {
	f, err := cast.ToFloat64E(cell)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if mode == ModeInt {
		return math.Trunc(f)
	}
	return f
}

// ReplicationSetFromRecords builds a set from loosely typed records keyed by
// variable name, such as rows re-read from an export. Missing or unreadable
// cells become 0.
func ReplicationSetFromRecords(records []map[string]any, mode NumericMode) (*ReplicationSet, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no replication records: %w", ErrInvalidInput)
	}
	set := &ReplicationSet{mode: mode, table: make([][]float64, len(records))}
	for i, rec := range records {
		row := make([]float64, len(Variables))
		for j, v := range Variables {
			row[j] = coerceCell(rec[string(v)], mode)
		}
		set.table[i] = row
	}
	return set, nil
}

// Driver runs replication batches for single patients.
type Driver struct {
	Classifier Classifier
	Sampler    StageSampler
	Mode       NumericMode
}

// Run classifies cfg once and simulates nRuns replications sequentially on
// rng. The returned set always has exactly nRuns rows.
func (d Driver) Run(cfg PatientConfig, nRuns int, rng *rand.Rand) (*ReplicationSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if nRuns < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d: %w", nRuns, ErrInvalidInput)
	}
	if d.Classifier == nil || d.Sampler == nil {
		return nil, fmt.Errorf("driver needs a classifier and a sampler: %w", ErrInvalidInput)
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random stream: %w", ErrInvalidInput)
	}

	cluster, err := d.Classifier.Classify(cfg)
	if err != nil {
		return nil, fmt.Errorf("classifying patient: %w", err)
	}

	set := &ReplicationSet{Cluster: cluster, mode: d.Mode, table: make([][]float64, nRuns)}
	for i := 0; i < nRuns; i++ {
		res, err := SimulateStages(cfg, cluster, d.Sampler, rng)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		row := make([]float64, len(Variables))
		for j, v := range res.Values() {
			row[j] = coerceCell(v, d.Mode)
		}
		set.table[i] = row
	}
	return set, nil
}
