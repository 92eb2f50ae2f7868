package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simuci/simuci/sim"
	"github.com/simuci/simuci/sim/dataset"
	"github.com/simuci/simuci/sim/stats"
)

var (
	trueDataPath       string  // Historical patient table (CSV or XLSX)
	validateRuns       int     // Replications per historical patient
	validateSeed       int64   // Master seed; time-based when unset
	validateConfidence float64 // Coverage interval confidence level
	validateWorkers    int     // Concurrent patient simulations
)

// validateCmd compares simulated stays against a historical table
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the simulator against historical patient data",
	Run: func(cmd *cobra.Command, args []string) {
		td, err := dataset.LoadTrueData(trueDataPath)
		if err != nil {
			logrus.Fatalf("Failed to load true data: %v", err)
		}
		driver, err := loadDriver(calibrationPath, centroidsPath, -1, sim.ModeInt)
		if err != nil {
			logrus.Fatalf("Cannot set up simulation: %v", err)
		}
		key := seedFromFlags(cmd, validateSeed)

		logrus.Infof("Simulating %d patients × %d runs with %d workers", len(td.Patients), validateRuns, validateWorkers)
		start := time.Now()
		report, err := validateCohort(cmd.Context(), driver, td, validateRuns, key, validateWorkers, validateConfidence)
		if err != nil {
			logrus.Fatalf("Validation failed: %v", err)
		}
		logrus.Infof("Validation finished in %v", time.Since(start))

		if err := writeYAML(os.Stdout, report); err != nil {
			logrus.Fatalf("Writing report failed: %v", err)
		}
	},
}

// validateCohort simulates every historical patient and evaluates the
// simulation against the observed outcomes.
func validateCohort(ctx context.Context, driver sim.Driver, td *dataset.TrueData, runs int, key sim.SimulationKey, workers int, level float64) (*stats.MetricsReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	arr, err := sim.SimulateCohort(ctx, driver, td.Patients, sim.CohortOptions{Runs: runs, Key: key, Workers: workers})
	if err != nil {
		return nil, err
	}
	v := stats.NewValidator(td.Values, arr, sim.VariableNames())
	return v.Evaluate(stats.EvaluateOptions{ConfidenceLevel: level, Seed: int64(key)})
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("YAML marshal failed: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func init() {
	validateCmd.Flags().StringVar(&trueDataPath, "true-data", "", "Historical patient table with covariate and outcome columns")
	validateCmd.Flags().IntVar(&validateRuns, "runs", 100, "Replications per patient")
	validateCmd.Flags().Int64Var(&validateSeed, "seed", 0, "Seed for the simulation (time-based when unset)")
	validateCmd.Flags().Float64Var(&validateConfidence, "confidence", 0.95, "Confidence level for coverage intervals")
	validateCmd.Flags().IntVar(&validateWorkers, "workers", runtime.GOMAXPROCS(0), "Patients simulated concurrently")
	_ = validateCmd.MarkFlagRequired("true-data")

	rootCmd.AddCommand(validateCmd)
}
