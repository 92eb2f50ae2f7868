package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/simuci/simuci/sim/distribution"
)

// MaxVentilationDraws bounds the redraws of ventilation time while it
// exceeds the ICU stay. After the last draw ventilation is clamped to the
// ICU stay.
const MaxVentilationDraws = 1000

// MaxDurationHours caps every stage draw before it is truncated to whole
// hours, so heavy-tailed calibrations cannot overflow int arithmetic.
const MaxDurationHours = 1e9

// ReplicationResult is the outcome of one simulated patient stay, in whole
// hours. ICUStay == PreVentilation + Ventilation + PostVentilation.
type ReplicationResult struct {
	PreVentilation  int `json:"pre_vam" yaml:"pre_vam"`
	Ventilation     int `json:"vam" yaml:"vam"`
	PostVentilation int `json:"post_vam" yaml:"post_vam"`
	ICUStay         int `json:"icu_stay" yaml:"icu_stay"`
	PostICUStay     int `json:"post_icu_stay" yaml:"post_icu_stay"`
}

// Get returns the value of variable v.
func (r ReplicationResult) Get(v Variable) (int, bool) {
	switch v {
	case VarPreVentilation:
		return r.PreVentilation, true
	case VarVentilation:
		return r.Ventilation, true
	case VarPostVentilation:
		return r.PostVentilation, true
	case VarICUStay:
		return r.ICUStay, true
	case VarPostICUStay:
		return r.PostICUStay, true
	}
	return 0, false
}

// Values returns the fields in Variables order.
func (r ReplicationResult) Values() []int {
	return []int{r.PreVentilation, r.Ventilation, r.PostVentilation, r.ICUStay, r.PostICUStay}
}

// SimulateStages runs one replication for a patient already assigned to
// cluster. Draws are taken from rng in a fixed order: post-ICU stay, ICU
// stay, then ventilation until it fits inside the ICU stay.
func SimulateStages(cfg PatientConfig, cluster ClusterID, sampler StageSampler, rng *rand.Rand) (ReplicationResult, error) {
	draw := func(stage distribution.Stage) (int, error) {
		v, err := sampler.Sample(stage, cluster, rng)
		if err != nil {
			return 0, fmt.Errorf("sampling %s: %w", stage, err)
		}
		switch {
		case math.IsNaN(v) || v < 0:
			v = 0
		case v > MaxDurationHours:
			v = MaxDurationHours
		}
		return int(v), nil
	}

	postICU, err := draw(distribution.StagePostICU)
	if err != nil {
		return ReplicationResult{}, err
	}
	icu, err := draw(distribution.StageICU)
	if err != nil {
		return ReplicationResult{}, err
	}

	vam := 0
	fits := false
	for attempt := 0; attempt < MaxVentilationDraws; attempt++ {
		if vam, err = draw(distribution.StageVentilation); err != nil {
			return ReplicationResult{}, err
		}
		if vam <= icu {
			fits = true
			break
		}
	}
	if !fits {
		logrus.Debugf("ventilation exceeded ICU stay %d after %d draws, clamping", icu, MaxVentilationDraws)
		vam = icu
	}

	preVAM := (icu - vam) * cfg.Percent / 100
	return ReplicationResult{
		PreVentilation:  preVAM,
		Ventilation:     vam,
		PostVentilation: icu - preVAM - vam,
		ICUStay:         icu,
		PostICUStay:     postICU,
	}, nil
}
