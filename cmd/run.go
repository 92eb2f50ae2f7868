package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simuci/simuci/sim"
	"github.com/simuci/simuci/sim/dataset"
	"github.com/simuci/simuci/sim/stats"
)

var (
	patient         sim.PatientConfig // Patient described by the run flags
	runs            int               // Replications per patient
	seed            int64             // Master seed; time-based when unset
	forcedCluster   int               // Cluster to force, -1 to classify
	asFloat         bool              // Keep replication cells as floats
	outputPath      string            // CSV or XLSX destination, "-" for stdout
	printSummary    bool              // Print a per-variable summary instead of rows
	summaryInDays   bool              // Report summary values in days
	summaryLevel    float64           // Confidence level of summary intervals
	allowIncomplete bool              // Skip the admission-diagnosis and respiratory checks
)

// runCmd simulates one patient
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the ICU stay stages of one patient",
	Run: func(cmd *cobra.Command, args []string) {
		if !allowIncomplete {
			if err := patient.CheckClinicalFields(); err != nil {
				logrus.Fatalf("Incomplete patient: %v (use --allow-incomplete to simulate anyway)", err)
			}
		}
		mode := sim.ModeInt
		if asFloat {
			mode = sim.ModeFloat
		}
		driver, err := loadDriver(calibrationPath, centroidsPath, forcedCluster, mode)
		if err != nil {
			logrus.Fatalf("Cannot set up simulation: %v", err)
		}

		key := seedFromFlags(cmd, seed)
		id := uuid.New().String()
		rng := sim.NewPartitionedRNG(key)
		set, err := driver.Run(patient, runs, rng.ForSubsystem(sim.SubsystemReplication))
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Patient %s: cluster %d, %d runs, seed %d", id, set.Cluster, set.Len(), int64(key))

		if printSummary {
			if err := writeSummary(os.Stdout, set, summaryLevel, summaryInDays); err != nil {
				logrus.Fatalf("Summary failed: %v", err)
			}
			if !cmd.Flags().Changed("output") {
				return
			}
		}
		if err := writeReplication(outputPath, os.Stdout, set); err != nil {
			logrus.Fatalf("Writing results failed: %v", err)
		}
	},
}

// writeReplication writes set to path by extension (.xlsx or CSV), or to
// stdout as CSV when path is "-".
func writeReplication(path string, stdout io.Writer, set *sim.ReplicationSet) error {
	if path == "-" || path == "" {
		return dataset.WriteReplicationCSV(stdout, set)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return dataset.WriteReplicationXLSX(path, set)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteReplicationCSV(f, set); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeSummary prints per-variable summaries as YAML.
func writeSummary(w io.Writer, set *sim.ReplicationSet, level float64, days bool) error {
	cols := set.Columns()
	if days {
		for _, col := range cols {
			for i := range col {
				col[i] = stats.HoursToDays(col[i])
			}
		}
	}
	summaries, err := stats.Summarize(sim.VariableNames(), cols, level)
	if err != nil {
		return err
	}
	unit := "hours"
	if days {
		unit = "days"
	}
	out := struct {
		Cluster   sim.ClusterID         `yaml:"cluster"`
		Runs      int                   `yaml:"runs"`
		Unit      string                `yaml:"unit"`
		Variables []stats.ColumnSummary `yaml:"variables"`
	}{set.Cluster, set.Len(), unit, summaries}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(data))
	return err
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&patient.Age, "age", 0, "Patient age in years")
	f.IntVar(&patient.DiagAdmission1, "diag-admission1", 0, "Admission diagnosis 1 code")
	f.IntVar(&patient.DiagAdmission2, "diag-admission2", 0, "Admission diagnosis 2 code")
	f.IntVar(&patient.DiagAdmission3, "diag-admission3", 0, "Admission diagnosis 3 code")
	f.IntVar(&patient.DiagAdmission4, "diag-admission4", 0, "Admission diagnosis 4 code")
	f.IntVar(&patient.DiagDischarge2, "diag-discharge2", 0, "Discharge diagnosis 2 code")
	f.IntVar(&patient.Apache, "apache", 0, "APACHE II score")
	f.IntVar(&patient.RespInsufficiency, "resp-insufficiency", 0, "Respiratory insufficiency code")
	f.IntVar(&patient.VentType, "vent-type", 0, "Artificial ventilation type code")
	f.IntVar(&patient.PreICUStay, "pre-icu-stay", 0, "Observed pre-ICU stay (hours)")
	f.IntVar(&patient.ICUStay, "icu-stay", 0, "Observed ICU stay (hours)")
	f.IntVar(&patient.VentilationTime, "vam-time", 0, "Observed mechanical ventilation time (hours)")
	f.IntVar(&patient.Percent, "percent", sim.DefaultPercent, "Percent of non-ventilated ICU time spent before ventilation")

	f.IntVar(&runs, "runs", 200, "Number of replications")
	f.Int64Var(&seed, "seed", 0, "Seed for the simulation (time-based when unset)")
	f.IntVar(&forcedCluster, "cluster", -1, "Force cluster 0 or 1 instead of classifying (-1 = classify)")
	f.BoolVar(&asFloat, "as-float", false, "Keep replication values as floats")
	f.StringVar(&outputPath, "output", "-", "Output path (.csv or .xlsx); - for stdout")
	f.BoolVar(&printSummary, "summary", false, "Print a per-variable summary")
	f.BoolVar(&summaryInDays, "days", false, "Report summary values in days")
	f.Float64Var(&summaryLevel, "confidence", 0.95, "Confidence level of summary intervals")
	f.BoolVar(&allowIncomplete, "allow-incomplete", false, "Simulate patients without admission diagnoses or respiratory code")

	rootCmd.AddCommand(runCmd)
}
