package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// ClusterID identifies a patient cluster (0 or 1).
type ClusterID int

// NumClusters is the number of clusters a centroid table defines.
const NumClusters = 2

// Classifier assigns a patient to a cluster.
type Classifier interface {
	Classify(cfg PatientConfig) (ClusterID, error)
}

// NearestCentroid assigns the cluster whose centroid is closest in
// Euclidean distance over the clustering covariates. Ties go to the lower
// index.
type NearestCentroid struct {
	centroids [][]float64
}

// NewNearestCentroid validates and copies a centroid table: exactly
// NumClusters rows of len(CovariateNames) finite values. Any other shape
// fails with ErrDataUnavailable.
func NewNearestCentroid(centroids [][]float64) (*NearestCentroid, error) {
	if len(centroids) != NumClusters {
		return nil, fmt.Errorf("centroid table has %d rows, want %d: %w", len(centroids), NumClusters, ErrDataUnavailable)
	}
	table := make([][]float64, len(centroids))
	for i, row := range centroids {
		if len(row) != len(CovariateNames) {
			return nil, fmt.Errorf("centroid %d has %d values, want %d: %w", i, len(row), len(CovariateNames), ErrDataUnavailable)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("centroid %d column %s is not finite: %w", i, CovariateNames[j], ErrDataUnavailable)
			}
		}
		table[i] = append([]float64(nil), row...)
	}
	return &NearestCentroid{centroids: table}, nil
}

// Classify returns the index of the nearest centroid.
func (n *NearestCentroid) Classify(cfg PatientConfig) (ClusterID, error) {
	x := cfg.Covariates()
	best := 0
	bestDist := math.Inf(1)
	for i, c := range n.centroids {
		if d := floats.Distance(x, c, 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	logrus.Debugf("patient assigned to cluster %d (distance %.3f)", best, bestDist)
	return ClusterID(best), nil
}

// FixedCluster is a Classifier that ignores the patient and always returns
// the same cluster.
type FixedCluster ClusterID

func (f FixedCluster) Classify(_ PatientConfig) (ClusterID, error) {
	if f < 0 || int(f) >= NumClusters {
		return 0, fmt.Errorf("cluster %d out of range [0, %d): %w", int(f), NumClusters, ErrInvalidInput)
	}
	return ClusterID(f), nil
}
