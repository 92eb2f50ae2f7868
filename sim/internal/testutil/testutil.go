// Package testutil provides shared test infrastructure for the simuci
// packages: calibration fixtures and float assertion helpers.
package testutil

import (
	"math"
	"testing"

	"github.com/simuci/simuci/sim/distribution"
)

// CalibrationYAML is a complete two-cluster calibration document with
// realistic ICU stay shapes (hours).
const CalibrationYAML = `version: "1"
clusters:
  0:
    icu_stay:      {type: weibull, params: {shape: 1.1, scale: 190}}
    vam_time:      {type: gamma, params: {shape: 1.3, rate: 0.012}}
    post_icu_stay: {type: lognormal, params: {mu: 4.6, sigma: 0.9}}
  1:
    icu_stay:      {type: weibull, params: {shape: 1.2, scale: 420}}
    vam_time:      {type: gamma, params: {shape: 1.5, rate: 0.006}}
    post_icu_stay: {type: lognormal, params: {mu: 5.0, sigma: 0.8}}
`

// ConstantCalibration returns a calibration where both clusters draw the
// given constant durations for ICU stay, ventilation and post-ICU stay.
func ConstantCalibration(icu, vam, postICU float64) *distribution.Calibration {
	stage := func(v float64) distribution.DistSpec {
		return distribution.DistSpec{Type: "constant", Params: map[string]float64{"value": v}}
	}
	dists := distribution.StageDists{
		ICUStay:     stage(icu),
		Ventilation: stage(vam),
		PostICUStay: stage(postICU),
	}
	return &distribution.Calibration{
		Version:  "1",
		Clusters: map[int]distribution.StageDists{0: dists, 1: dists},
	}
}

// MustParseCalibration parses CalibrationYAML or fails the test.
func MustParseCalibration(t *testing.T) *distribution.Calibration {
	t.Helper()
	cal, err := distribution.ParseCalibration([]byte(CalibrationYAML))
	if err != nil {
		t.Fatalf("parsing fixture calibration: %v", err)
	}
	return cal
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
