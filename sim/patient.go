package sim

import "fmt"

// DefaultPercent is the share of non-ventilated ICU time placed before
// ventilation starts when a PatientConfig does not set one.
const DefaultPercent = 10

// PatientConfig describes one patient. It is passed by value and never
// mutated by the simulator. Durations are in hours.
type PatientConfig struct {
	Age               int `yaml:"age"`
	DiagAdmission1    int `yaml:"diag_admission1"`
	DiagAdmission2    int `yaml:"diag_admission2"`
	DiagAdmission3    int `yaml:"diag_admission3"`
	DiagAdmission4    int `yaml:"diag_admission4"`
	DiagDischarge2    int `yaml:"diag_discharge2"`
	Apache            int `yaml:"apache"`
	RespInsufficiency int `yaml:"resp_insufficiency"`
	VentType          int `yaml:"vent_type"`
	PreICUStay        int `yaml:"pre_icu_stay"`
	ICUStay           int `yaml:"icu_stay"`
	VentilationTime   int `yaml:"vam_time"`
	// Percent (0..100) of the non-ventilated ICU time spent before ventilation.
	Percent int `yaml:"percent"`
}

// Validate rejects configurations the simulator cannot run.
func (c PatientConfig) Validate() error {
	nonNegative := []struct {
		name string
		val  int
	}{
		{"age", c.Age},
		{"apache", c.Apache},
		{"pre_icu_stay", c.PreICUStay},
		{"icu_stay", c.ICUStay},
		{"vam_time", c.VentilationTime},
	}
	for _, f := range nonNegative {
		if f.val < 0 {
			return fmt.Errorf("%s must be non-negative, got %d: %w", f.name, f.val, ErrInvalidInput)
		}
	}
	if c.Percent < 0 || c.Percent > 100 {
		return fmt.Errorf("percent must be in [0, 100], got %d: %w", c.Percent, ErrInvalidInput)
	}
	return nil
}

// CheckClinicalFields rejects a patient with no admission diagnosis or
// without a respiratory-insufficiency code. Input forms require both before
// a simulation is offered.
func (c PatientConfig) CheckClinicalFields() error {
	if c.DiagAdmission1 == 0 && c.DiagAdmission2 == 0 && c.DiagAdmission3 == 0 && c.DiagAdmission4 == 0 {
		return fmt.Errorf("at least one admission diagnosis is required: %w", ErrInvalidInput)
	}
	if c.RespInsufficiency == 0 {
		return fmt.Errorf("respiratory insufficiency code is required: %w", ErrInvalidInput)
	}
	return nil
}

// CovariateNames lists the clustering covariates in the order Covariates
// returns them and centroid tables store them.
var CovariateNames = []string{
	"age", "diag_admission1", "diag_admission2", "diag_admission3", "diag_admission4",
	"apache", "resp_insufficiency", "vent_type", "icu_stay", "vam_time", "pre_icu_stay",
}

// Covariates returns the clustering covariates of c.
func (c PatientConfig) Covariates() []float64 {
	return []float64{
		float64(c.Age),
		float64(c.DiagAdmission1),
		float64(c.DiagAdmission2),
		float64(c.DiagAdmission3),
		float64(c.DiagAdmission4),
		float64(c.Apache),
		float64(c.RespInsufficiency),
		float64(c.VentType),
		float64(c.ICUStay),
		float64(c.VentilationTime),
		float64(c.PreICUStay),
	}
}
