package distribution

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Stage names a sampled phase of an ICU stay.
type Stage string

const (
	StageICU         Stage = "icu_stay"
	StageVentilation Stage = "vam_time"
	StagePostICU     Stage = "post_icu_stay"
)

// Stages lists the sampled stages in calibration-file order.
var Stages = []Stage{StageICU, StageVentilation, StagePostICU}

// ClusterCount is the number of patient clusters a calibration must cover.
const ClusterCount = 2

// StageDists holds the per-stage distributions of one cluster.
type StageDists struct {
	ICUStay     DistSpec `yaml:"icu_stay"`
	Ventilation DistSpec `yaml:"vam_time"`
	PostICUStay DistSpec `yaml:"post_icu_stay"`
}

// Get returns the distribution configured for stage.
func (s StageDists) Get(stage Stage) (DistSpec, bool) {
	switch stage {
	case StageICU:
		return s.ICUStay, true
	case StageVentilation:
		return s.Ventilation, true
	case StagePostICU:
		return s.PostICUStay, true
	}
	return DistSpec{}, false
}

// Calibration maps each cluster to its stage distributions.
type Calibration struct {
	Version  string             `yaml:"version"`
	Clusters map[int]StageDists `yaml:"clusters"`
}

// ParseCalibration decodes a YAML calibration document.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func ParseCalibration(data []byte) (*Calibration, error) {
	var cal Calibration
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cal); err != nil {
		return nil, fmt.Errorf("parsing calibration: %w", err)
	}
	return &cal, nil
}

// Spec returns the distribution for (stage, cluster).
func (c *Calibration) Spec(stage Stage, cluster int) (DistSpec, error) {
	dists, ok := c.Clusters[cluster]
	if !ok {
		return DistSpec{}, fmt.Errorf("calibration has no cluster %d", cluster)
	}
	spec, ok := dists.Get(stage)
	if !ok {
		return DistSpec{}, fmt.Errorf("unknown stage %q", stage)
	}
	return spec, nil
}

// Validate checks that every cluster defines a usable distribution for
// every stage.
func (c *Calibration) Validate() error {
	if c.Version != "" && c.Version != "1" {
		return fmt.Errorf("unsupported calibration version %q", c.Version)
	}
	if len(c.Clusters) != ClusterCount {
		return fmt.Errorf("calibration must define exactly %d clusters, got %d", ClusterCount, len(c.Clusters))
	}
	for cluster := 0; cluster < ClusterCount; cluster++ {
		if _, ok := c.Clusters[cluster]; !ok {
			return fmt.Errorf("calibration is missing cluster %d", cluster)
		}
		for _, stage := range Stages {
			spec, err := c.Spec(stage, cluster)
			if err != nil {
				return err
			}
			if spec.Type == "" {
				return fmt.Errorf("clusters.%d.%s: distribution type is required", cluster, stage)
			}
			if _, err := NewDurationSampler(spec); err != nil {
				return fmt.Errorf("clusters.%d.%s: %w", cluster, stage, err)
			}
		}
	}
	return nil
}
