package sim

import (
	"fmt"
	"math/rand"

	"github.com/simuci/simuci/sim/distribution"
)

// StageSampler draws the duration of one stage for a cluster.
type StageSampler interface {
	// Sample returns a non-negative duration in hours.
	Sample(stage distribution.Stage, cluster ClusterID, rng *rand.Rand) (float64, error)
}

// CalibratedSampler backs every (stage, cluster) pair with the distribution
// named in a calibration file.
type CalibratedSampler struct {
	samplers [NumClusters]map[distribution.Stage]distribution.DurationSampler
}

// NewCalibratedSampler builds the per-cluster samplers. An incomplete or
// invalid calibration fails with ErrDataUnavailable.
func NewCalibratedSampler(cal *distribution.Calibration) (*CalibratedSampler, error) {
	if cal == nil {
		return nil, fmt.Errorf("no calibration: %w", ErrDataUnavailable)
	}
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %v: %w", err, ErrDataUnavailable)
	}
	s := &CalibratedSampler{}
	for c := 0; c < NumClusters; c++ {
		s.samplers[c] = make(map[distribution.Stage]distribution.DurationSampler, len(distribution.Stages))
		for _, stage := range distribution.Stages {
			spec, err := cal.Spec(stage, c)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", err, ErrDataUnavailable)
			}
			ds, err := distribution.NewDurationSampler(spec)
			if err != nil {
				return nil, fmt.Errorf("clusters.%d.%s: %v: %w", c, stage, err, ErrDataUnavailable)
			}
			s.samplers[c][stage] = ds
		}
	}
	return s, nil
}

// Sample draws from the distribution configured for (stage, cluster).
func (s *CalibratedSampler) Sample(stage distribution.Stage, cluster ClusterID, rng *rand.Rand) (float64, error) {
	if cluster < 0 || int(cluster) >= NumClusters {
		return 0, fmt.Errorf("cluster %d out of range [0, %d): %w", int(cluster), NumClusters, ErrInvalidInput)
	}
	ds, ok := s.samplers[cluster][stage]
	if !ok {
		return 0, fmt.Errorf("no sampler for stage %q: %w", stage, ErrInvalidInput)
	}
	return ds.Sample(rng), nil
}
