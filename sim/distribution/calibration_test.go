package distribution

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCalibration = `
version: "1"
clusters:
  0:
    icu_stay:      {type: weibull, params: {shape: 1.1, scale: 190}}
    vam_time:      {type: gamma, params: {shape: 1.3, rate: 0.012}}
    post_icu_stay: {type: lognormal, params: {mu: 4.6, sigma: 0.9}}
  1:
    icu_stay:      {type: weibull, params: {shape: 1.2, scale: 420}}
    vam_time:      {type: exponential, params: {mean: 260}}
    post_icu_stay: {type: constant, params: {value: 72}}
`

func TestParseCalibration_ValidYAML(t *testing.T) {
	cal, err := ParseCalibration([]byte(validCalibration))
	require.NoError(t, err)
	require.NoError(t, cal.Validate())

	spec, err := cal.Spec(StageVentilation, 1)
	require.NoError(t, err)
	assert.Equal(t, "exponential", spec.Type)
	assert.Equal(t, 260.0, spec.Params["mean"])
}

func TestParseCalibration_UnknownKey_Rejected(t *testing.T) {
	// GIVEN a typo in a stage name
	doc := strings.Replace(validCalibration, "post_icu_stay: {type: constant", "post_icu: {type: constant", 1)

	// WHEN the document is parsed
	_, err := ParseCalibration([]byte(doc))

	// THEN strict decoding rejects it
	require.Error(t, err)
}

func TestCalibration_Validate_Failures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing cluster", `
clusters:
  0:
    icu_stay:      {type: constant, params: {value: 1}}
    vam_time:      {type: constant, params: {value: 1}}
    post_icu_stay: {type: constant, params: {value: 1}}
`},
		{"missing stage", strings.Replace(validCalibration, "    vam_time:      {type: gamma, params: {shape: 1.3, rate: 0.012}}\n", "", 1)},
		{"bad params", strings.Replace(validCalibration, "scale: 420", "scale: -1", 1)},
		{"bad version", strings.Replace(validCalibration, `version: "1"`, `version: "9"`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := ParseCalibration([]byte(tt.doc))
			require.NoError(t, err)
			assert.Error(t, cal.Validate())
		})
	}
}

func TestCalibration_Spec_UnknownCluster(t *testing.T) {
	cal, err := ParseCalibration([]byte(validCalibration))
	require.NoError(t, err)
	_, err = cal.Spec(StageICU, 5)
	assert.Error(t, err)
}
