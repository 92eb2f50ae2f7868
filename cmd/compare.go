package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simuci/simuci/sim/dataset"
	"github.com/simuci/simuci/sim/stats"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Non-parametric comparison of experiment result tables",
	Long:  "Compare exported experiment tables with rank tests. Samples of unequal length are head-truncated to a common length before testing.",
}

var compareColumn string // Column compared in every table; empty selects the first

// --- simuci compare wilcoxon ---

var wilcoxonX, wilcoxonY string

var compareWilcoxonCmd = &cobra.Command{
	Use:   "wilcoxon",
	Short: "Wilcoxon signed-rank test of two paired experiments",
	Run: func(cmd *cobra.Command, args []string) {
		res, err := runWilcoxon(wilcoxonX, wilcoxonY, compareColumn)
		if err != nil {
			logrus.Fatalf("Wilcoxon test failed: %v", err)
		}
		if err := writeYAML(os.Stdout, res); err != nil {
			logrus.Fatalf("Writing result failed: %v", err)
		}
	},
}

func runWilcoxon(xPath, yPath, column string) (stats.WilcoxonResult, error) {
	x, name, err := dataset.ReadColumn(xPath, column)
	if err != nil {
		return stats.WilcoxonResult{}, err
	}
	y, _, err := dataset.ReadColumn(yPath, column)
	if err != nil {
		return stats.WilcoxonResult{}, err
	}
	res, err := stats.Wilcoxon(x, y)
	if err != nil {
		return stats.WilcoxonResult{}, err
	}
	if res.Dropped > 0 {
		logrus.Warnf("Samples differ in length (%d vs %d); compared the first %d rows of %q", len(x), len(y), res.Pairs, name)
	}
	return res, nil
}

// --- simuci compare friedman ---

var friedmanSamples []string

var compareFriedmanCmd = &cobra.Command{
	Use:   "friedman",
	Short: "Friedman test of three or more related experiments",
	Run: func(cmd *cobra.Command, args []string) {
		res, err := runFriedman(friedmanSamples, compareColumn)
		if err != nil {
			logrus.Fatalf("Friedman test failed: %v", err)
		}
		if err := writeYAML(os.Stdout, res); err != nil {
			logrus.Fatalf("Writing result failed: %v", err)
		}
	},
}

func runFriedman(paths []string, column string) (stats.FriedmanResult, error) {
	samples := make([][]float64, len(paths))
	for i, p := range paths {
		vals, _, err := dataset.ReadColumn(p, column)
		if err != nil {
			return stats.FriedmanResult{}, err
		}
		samples[i] = vals
	}
	res, err := stats.Friedman(samples)
	if err != nil {
		return stats.FriedmanResult{}, err
	}
	if res.Truncated {
		logrus.Warnf("Samples differ in length; compared the first %d rows of each", res.CommonLength)
	}
	return res, nil
}

func init() {
	compareCmd.PersistentFlags().StringVar(&compareColumn, "column", "", "Column to compare (variable name or header; default first column)")

	compareWilcoxonCmd.Flags().StringVar(&wilcoxonX, "x", "", "First experiment table")
	compareWilcoxonCmd.Flags().StringVar(&wilcoxonY, "y", "", "Second experiment table")
	_ = compareWilcoxonCmd.MarkFlagRequired("x")
	_ = compareWilcoxonCmd.MarkFlagRequired("y")

	compareFriedmanCmd.Flags().StringArrayVar(&friedmanSamples, "sample", nil, "Experiment table (repeat at least three times)")
	_ = compareFriedmanCmd.MarkFlagRequired("sample")

	compareCmd.AddCommand(compareWilcoxonCmd)
	compareCmd.AddCommand(compareFriedmanCmd)

	rootCmd.AddCommand(compareCmd)
}
