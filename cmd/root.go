package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simuci/simuci/sim"
	"github.com/simuci/simuci/sim/dataset"
)

var (
	logLevel        string // Log verbosity level
	calibrationPath string // Calibration YAML with per-cluster stage distributions
	centroidsPath   string // Two-row centroid table (CSV or XLSX)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "simuci",
	Short: "Stage simulator for ICU mechanical-ventilation stays",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := applyEnvDefaults(cmd); err != nil {
			logrus.Fatalf("Failed to apply environment defaults: %v", err)
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// resolveSeed returns the fixed seed when the user set one, otherwise a
// seed derived from the wall clock.
func resolveSeed(fixed bool, seed int64, now func() time.Time) (int64, bool) {
	if fixed {
		return seed, true
	}
	return now().UnixNano(), false
}

// seedFromFlags resolves --seed for cmd and logs unfixed seeds so the run
// can be replayed.
func seedFromFlags(cmd *cobra.Command, seed int64) sim.SimulationKey {
	s, fixed := resolveSeed(cmd.Flags().Changed("seed"), seed, time.Now)
	if !fixed {
		logrus.Warnf("No --seed given; using %d (pass --seed %d to reproduce)", s, s)
	}
	return sim.NewSimulationKey(s)
}

// loadDriver builds a Driver from the calibration and centroid files.
// With forced >= 0 the centroid table is not read.
func loadDriver(calibration, centroids string, forced int, mode sim.NumericMode) (sim.Driver, error) {
	cal, err := dataset.LoadCalibration(calibration)
	if err != nil {
		return sim.Driver{}, err
	}
	sampler, err := sim.NewCalibratedSampler(cal)
	if err != nil {
		return sim.Driver{}, err
	}
	d := sim.Driver{Sampler: sampler, Mode: mode}
	if forced >= 0 {
		d.Classifier = sim.FixedCluster(forced)
		return d, nil
	}
	classifier, err := dataset.LoadCentroids(centroids)
	if err != nil {
		return sim.Driver{}, err
	}
	d.Classifier = classifier
	return d, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&calibrationPath, "calibration", "defaults.yaml", "Path to the calibration YAML")
	rootCmd.PersistentFlags().StringVar(&centroidsPath, "centroids", "data/centroids.csv", "Path to the centroid table (CSV or XLSX)")
}
