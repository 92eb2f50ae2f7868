package dataset

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cast"

	"github.com/simuci/simuci/sim"
	"github.com/simuci/simuci/sim/distribution"
)

// LoadCalibration reads and validates a calibration YAML file. Any failure
// wraps sim.ErrDataUnavailable.
func LoadCalibration(path string) (*distribution.Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calibration: %v: %w", err, sim.ErrDataUnavailable)
	}
	cal, err := distribution.ParseCalibration(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, sim.ErrDataUnavailable)
	}
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, sim.ErrDataUnavailable)
	}
	return cal, nil
}

// LoadCentroids reads a two-row centroid table. Columns are matched by
// covariate name; a table whose header names none of them is read
// positionally from its last len(sim.CovariateNames) columns, which skips a
// leading index column. Any failure wraps sim.ErrDataUnavailable.
func LoadCentroids(path string) (*sim.NearestCentroid, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("reading centroids: %v: %w", err, sim.ErrDataUnavailable)
	}
	cols, err := covariateColumns(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, sim.ErrDataUnavailable)
	}
	table := make([][]float64, len(t.Rows))
	for i := range t.Rows {
		row := make([]float64, len(cols))
		for j, c := range cols {
			v, err := cast.ToFloat64E(t.Cell(i, c))
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %q: %v: %w", path, i+1, sim.CovariateNames[j], err, sim.ErrDataUnavailable)
			}
			row[j] = v
		}
		table[i] = row
	}
	return sim.NewNearestCentroid(table)
}

func covariateColumns(t *Table) ([]int, error) {
	cols := make([]int, len(sim.CovariateNames))
	found := 0
	for j, name := range sim.CovariateNames {
		cols[j] = t.Index(covariateAliases[name]...)
		if cols[j] >= 0 {
			found++
		}
	}
	switch {
	case found == len(cols):
		return cols, nil
	case found > 0:
		for j, c := range cols {
			if c < 0 {
				return nil, fmt.Errorf("missing covariate column %q", sim.CovariateNames[j])
			}
		}
	}
	width := len(t.Header)
	if width < len(cols) {
		return nil, fmt.Errorf("need %d covariate columns, header has %d", len(cols), width)
	}
	for j := range cols {
		cols[j] = width - len(cols) + j
	}
	return cols, nil
}

// TrueData is a historical patient table: one PatientConfig per row and the
// observed value of every sim.Variables column.
type TrueData struct {
	Patients []sim.PatientConfig
	Values   [][]float64 // patients × len(sim.Variables)
}

// LoadTrueData reads historical patients with covariate and outcome
// columns. Unreadable numeric cells become 0. Percent defaults to
// sim.DefaultPercent when the table has no percent column.
func LoadTrueData(path string) (*TrueData, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	covCols := make(map[string]int, len(covariateAliases))
	for _, name := range sim.CovariateNames {
		idx := t.Index(covariateAliases[name]...)
		if idx < 0 {
			return nil, fmt.Errorf("%s: missing covariate column %q: %w", path, name, sim.ErrInvalidInput)
		}
		covCols[name] = idx
	}
	varCols := make([]int, len(sim.Variables))
	for j, v := range sim.Variables {
		varCols[j] = t.Index(variableAliases[v]...)
		if varCols[j] < 0 {
			return nil, fmt.Errorf("%s: missing outcome column %q: %w", path, v, sim.ErrInvalidInput)
		}
	}
	dischargeCol := t.Index(dischargeAliases...)
	percentCol := t.Index(percentAliases...)

	td := &TrueData{
		Patients: make([]sim.PatientConfig, len(t.Rows)),
		Values:   make([][]float64, len(t.Rows)),
	}
	for i := range t.Rows {
		num := func(col int) float64 {
			if col < 0 {
				return 0
			}
			f, err := cast.ToFloat64E(t.Cell(i, col))
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return 0
			}
			return f
		}
		in := func(name string) int { return int(num(covCols[name])) }

		p := sim.PatientConfig{
			Age:               in("age"),
			DiagAdmission1:    in("diag_admission1"),
			DiagAdmission2:    in("diag_admission2"),
			DiagAdmission3:    in("diag_admission3"),
			DiagAdmission4:    in("diag_admission4"),
			DiagDischarge2:    int(num(dischargeCol)),
			Apache:            in("apache"),
			RespInsufficiency: in("resp_insufficiency"),
			VentType:          in("vent_type"),
			PreICUStay:        in("pre_icu_stay"),
			ICUStay:           in("icu_stay"),
			VentilationTime:   in("vam_time"),
			Percent:           sim.DefaultPercent,
		}
		if percentCol >= 0 && t.Cell(i, percentCol) != "" {
			p.Percent = int(num(percentCol))
		}
		td.Patients[i] = p

		vals := make([]float64, len(varCols))
		for j, c := range varCols {
			vals[j] = num(c)
		}
		td.Values[i] = vals
	}
	return td, nil
}
