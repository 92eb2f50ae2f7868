package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SimulationArray holds simulated replications indexed [patient][run][variable].
type SimulationArray [][][]float64

// Shape returns the array dimensions as seen from its first patient and run.
func (a SimulationArray) Shape() (patients, runs, variables int) {
	patients = len(a)
	if patients == 0 {
		return 0, 0, 0
	}
	runs = len(a[0])
	if runs == 0 {
		return patients, 0, 0
	}
	return patients, runs, len(a[0][0])
}

// EvaluateOptions controls a validation pass.
type EvaluateOptions struct {
	ConfidenceLevel float64
	// Seed is recorded in the report. Every metric is closed-form, so it
	// does not change the numbers.
	Seed int64
}

// DefaultEvaluateOptions returns a 95% confidence level and seed 0.
func DefaultEvaluateOptions() EvaluateOptions {
	return EvaluateOptions{ConfidenceLevel: 0.95}
}

// ErrorMetrics aggregates per-patient mean errors over every (patient, variable) cell.
type ErrorMetrics struct {
	RMSE float64 `json:"rmse" yaml:"rmse"`
	MAE  float64 `json:"mae" yaml:"mae"`
	MAPE float64 `json:"mape" yaml:"mape"` // percent; NaN when every true value is 0
}

// VariableDiagnostics summarizes central tendency of one variable.
type VariableDiagnostics struct {
	TrueMean       float64 `json:"true_mean" yaml:"true_mean"`
	SimMean        float64 `json:"sim_mean" yaml:"sim_mean"`
	SimStd         float64 `json:"sim_std" yaml:"sim_std"` // std of per-patient means across patients
	Bias           float64 `json:"bias" yaml:"bias"`
	ZeroProportion float64 `json:"zero_proportion" yaml:"zero_proportion"`
	BiasDirection  string  `json:"bias_direction" yaml:"bias_direction"` // "over-predict", "under-predict", "neutral"
}

// VariableReport holds the per-variable part of a MetricsReport.
type VariableReport struct {
	Name        string              `json:"name" yaml:"name"`
	CoveragePct float64             `json:"coverage_pct" yaml:"coverage_pct"`
	KS          KSResult            `json:"ks" yaml:"ks"`
	Diagnostics VariableDiagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// MetricsReport is the read-only result of Validator.Evaluate.
type MetricsReport struct {
	Patients        int              `json:"patients" yaml:"patients"`
	Runs            int              `json:"runs" yaml:"runs"`
	ConfidenceLevel float64          `json:"confidence_level" yaml:"confidence_level"`
	Seed            int64            `json:"seed" yaml:"seed"`
	Error           ErrorMetrics     `json:"error" yaml:"error"`
	Variables       []VariableReport `json:"variables" yaml:"variables"`
	OverallKS       KSResult         `json:"overall_ks" yaml:"overall_ks"`
}

// Coverage returns the coverage percentage for the named variable.
func (r *MetricsReport) Coverage(name string) (float64, bool) {
	for _, v := range r.Variables {
		if v.Name == name {
			return v.CoveragePct, true
		}
	}
	return 0, false
}

// Validator compares a true-data table (patients × variables) against
// simulated replications of the same patients (patients × runs × variables).
type Validator struct {
	trueData   [][]float64
	simulation SimulationArray
	names      []string
	report     *MetricsReport
}

// NewValidator binds the inputs. Shapes are checked by Evaluate.
// names labels the variable axis; nil yields var_0, var_1, ...
func NewValidator(trueData [][]float64, simulation SimulationArray, names []string) *Validator {
	return &Validator{trueData: trueData, simulation: simulation, names: names}
}

// Report returns the last evaluated report, or nil before Evaluate succeeds.
func (v *Validator) Report() *MetricsReport {
	return v.report
}

// Evaluate computes error metrics, coverage, distribution-shape tests and
// diagnostics. Every call rebuilds the report from scratch.
func (v *Validator) Evaluate(opts EvaluateOptions) (*MetricsReport, error) {
	if !validLevel(opts.ConfidenceLevel) {
		return nil, fmt.Errorf("confidence level must be in (0, 1), got %v: %w", opts.ConfidenceLevel, ErrInvalidInput)
	}
	patients, runs, nVars, err := v.checkShapes()
	if err != nil {
		return nil, err
	}
	names := v.variableNames(nVars)

	report := &MetricsReport{
		Patients:        patients,
		Runs:            runs,
		ConfidenceLevel: opts.ConfidenceLevel,
		Seed:            opts.Seed,
		Variables:       make([]VariableReport, nVars),
	}

	// means[i][j] is the mean over runs of patient i, variable j.
	means := make([][]float64, patients)
	stds := make([][]float64, patients)
	runVals := make([]float64, runs)
	for i := range v.simulation {
		means[i] = make([]float64, nVars)
		stds[i] = make([]float64, nVars)
		for j := 0; j < nVars; j++ {
			for r := range v.simulation[i] {
				runVals[r] = v.simulation[i][r][j]
			}
			if runs > 1 {
				means[i][j], stds[i][j] = stat.MeanStdDev(runVals, nil)
			} else {
				means[i][j] = runVals[0]
			}
		}
	}

	report.Error = errorMetrics(v.trueData, means)

	var allSim, allTrue []float64
	for j := 0; j < nVars; j++ {
		trueCol := make([]float64, patients)
		meanCol := make([]float64, patients)
		simFlat := make([]float64, 0, patients*runs)
		covered := 0
		for i := 0; i < patients; i++ {
			trueCol[i] = v.trueData[i][j]
			meanCol[i] = means[i][j]
			for r := 0; r < runs; r++ {
				simFlat = append(simFlat, v.simulation[i][r][j])
			}
			lo, hi := TInterval(means[i][j], stds[i][j], runs, opts.ConfidenceLevel)
			if trueCol[i] >= lo && trueCol[i] <= hi {
				covered++
			}
		}
		ks, err := KolmogorovSmirnov(simFlat, trueCol)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", names[j], err)
		}
		report.Variables[j] = VariableReport{
			Name:        names[j],
			CoveragePct: 100 * float64(covered) / float64(patients),
			KS:          ks,
			Diagnostics: diagnostics(trueCol, meanCol),
		}
		allSim = append(allSim, simFlat...)
		allTrue = append(allTrue, trueCol...)
	}

	overall, err := KolmogorovSmirnov(allSim, allTrue)
	if err != nil {
		return nil, err
	}
	report.OverallKS = overall

	v.report = report
	return report, nil
}

func (v *Validator) checkShapes() (patients, runs, nVars int, err error) {
	if len(v.trueData) == 0 {
		return 0, 0, 0, fmt.Errorf("true data is empty: %w", ErrInvalidInput)
	}
	if len(v.simulation) == 0 {
		return 0, 0, 0, fmt.Errorf("simulation array is empty: %w", ErrInvalidInput)
	}
	patients, runs, _ = v.simulation.Shape()
	if len(v.trueData) != patients {
		return 0, 0, 0, fmt.Errorf("true data has %d patients, simulation has %d: %w", len(v.trueData), patients, ErrInvalidInput)
	}
	nVars = len(v.trueData[0])
	if nVars == 0 {
		return 0, 0, 0, fmt.Errorf("true data has no variables: %w", ErrInvalidInput)
	}
	if runs == 0 {
		return 0, 0, 0, fmt.Errorf("simulation has no runs: %w", ErrInvalidInput)
	}
	for i, row := range v.trueData {
		if len(row) != nVars {
			return 0, 0, 0, fmt.Errorf("true data row %d has %d variables, want %d: %w", i, len(row), nVars, ErrInvalidInput)
		}
	}
	for i, p := range v.simulation {
		if len(p) != runs {
			return 0, 0, 0, fmt.Errorf("patient %d has %d runs, want %d: %w", i, len(p), runs, ErrInvalidInput)
		}
		for r, vals := range p {
			if len(vals) != nVars {
				return 0, 0, 0, fmt.Errorf("patient %d run %d has %d variables, true data has %d: %w", i, r, len(vals), nVars, ErrInvalidInput)
			}
		}
	}
	if v.names != nil && len(v.names) != nVars {
		return 0, 0, 0, fmt.Errorf("%d variable names for %d variables: %w", len(v.names), nVars, ErrInvalidInput)
	}
	return patients, runs, nVars, nil
}

func (v *Validator) variableNames(n int) []string {
	if v.names != nil {
		return v.names
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("var_%d", i)
	}
	return names
}

// errorMetrics computes RMSE, MAE and MAPE over all cells. MAPE skips cells
// whose true value is 0.
func errorMetrics(trueData, means [][]float64) ErrorMetrics {
	var sq, abs, pct float64
	cells, pctCells := 0, 0
	for i := range trueData {
		for j, t := range trueData[i] {
			diff := means[i][j] - t
			sq += diff * diff
			abs += math.Abs(diff)
			cells++
			if t != 0 {
				pct += 100 * math.Abs(diff) / math.Abs(t)
				pctCells++
			}
		}
	}
	m := ErrorMetrics{
		RMSE: math.Sqrt(sq / float64(cells)),
		MAE:  abs / float64(cells),
		MAPE: math.NaN(),
	}
	if pctCells > 0 {
		m.MAPE = pct / float64(pctCells)
	}
	return m
}

func diagnostics(trueCol, meanCol []float64) VariableDiagnostics {
	d := VariableDiagnostics{
		TrueMean: stat.Mean(trueCol, nil),
		SimMean:  stat.Mean(meanCol, nil),
	}
	if len(meanCol) > 1 {
		d.SimStd = stat.StdDev(meanCol, nil)
	}
	d.Bias = d.SimMean - d.TrueMean
	zeros := 0
	for _, t := range trueCol {
		if t == 0 {
			zeros++
		}
	}
	d.ZeroProportion = float64(zeros) / float64(len(trueCol))
	switch {
	case d.Bias > 0:
		d.BiasDirection = "over-predict"
	case d.Bias < 0:
		d.BiasDirection = "under-predict"
	default:
		d.BiasDirection = "neutral"
	}
	return d
}
