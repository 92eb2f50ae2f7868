// Package sim provides the per-patient stage simulator for ICU
// mechanical-ventilation stays.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - patient.go: PatientConfig, the immutable patient description
//   - cluster.go: nearest-centroid assignment of a patient to a cluster
//   - simulator.go: one replication (post-ICU, ICU and ventilation draws, stage split)
//   - replication.go: the Driver that repeats a replication N times
//
// # Architecture
//
// The sim package defines interfaces and the simulation kernel; supporting
// code lives in sub-packages:
//   - sim/distribution/: parametric duration samplers and the calibration file
//   - sim/stats/: validation metrics, Kolmogorov-Smirnov, Wilcoxon and Friedman tests
//   - sim/dataset/: CSV/XLSX loading and replication export
//
// Randomness is never ambient. Every draw comes from a *rand.Rand handed out by
// a PartitionedRNG keyed by a SimulationKey, so a fixed key reproduces a run
// bit for bit.
//
// # Key Interfaces
//
//   - Classifier: map a PatientConfig to a ClusterID
//   - StageSampler: draw a stage duration for a cluster
package sim
