package cmd

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simuci/simuci/sim"
	"github.com/simuci/simuci/sim/dataset"
	"github.com/simuci/simuci/sim/stats"
)

// repoFile resolves a path relative to the repository root.
func repoFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", name)
	if _, err := os.Stat(path); err != nil {
		t.Skipf("%s not found, skipping integration test", name)
	}
	return path
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolveSeed(t *testing.T) {
	clock := func() time.Time { return time.Unix(0, 987654321) }

	// GIVEN --seed was set explicitly
	s, fixed := resolveSeed(true, 42, clock)
	// THEN it is used as is
	assert.True(t, fixed)
	assert.Equal(t, int64(42), s)

	// GIVEN --seed was not set
	s, fixed = resolveSeed(false, 42, clock)
	// THEN the seed comes from the clock
	assert.False(t, fixed)
	assert.Equal(t, int64(987654321), s)
}

func newFlagCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().String("calibration", "defaults.yaml", "")
	c.Flags().String("centroids", "data/centroids.csv", "")
	return c
}

func TestApplyEnvDefaults_EnvFileOverridesDefaults(t *testing.T) {
	old := envFile
	t.Cleanup(func() { envFile = old })
	envFile = writeTemp(t, ".env", "SIMUCI_CALIBRATION=/etc/simuci/cal.yaml\n")
	t.Setenv("SIMUCI_CALIBRATION", "")
	os.Unsetenv("SIMUCI_CALIBRATION")
	t.Setenv("SIMUCI_CENTROIDS", "/tmp/c.xlsx")

	c := newFlagCommand()
	require.NoError(t, applyEnvDefaults(c))

	cal, _ := c.Flags().GetString("calibration")
	cent, _ := c.Flags().GetString("centroids")
	assert.Equal(t, "/etc/simuci/cal.yaml", cal)
	assert.Equal(t, "/tmp/c.xlsx", cent)
}

func TestApplyEnvDefaults_ExplicitFlagWins(t *testing.T) {
	old := envFile
	t.Cleanup(func() { envFile = old })
	envFile = filepath.Join(t.TempDir(), "missing.env")
	t.Setenv("SIMUCI_CENTROIDS", "/tmp/env.csv")

	c := newFlagCommand()
	require.NoError(t, c.Flags().Set("centroids", "mine.csv"))
	require.NoError(t, applyEnvDefaults(c))

	cent, _ := c.Flags().GetString("centroids")
	assert.Equal(t, "mine.csv", cent)
}

func TestLoadDriver_RepositoryDefaults(t *testing.T) {
	cal := repoFile(t, "defaults.yaml")
	cent := repoFile(t, "data/centroids.csv")

	d, err := loadDriver(cal, cent, -1, sim.ModeInt)
	require.NoError(t, err)

	set, err := d.Run(sim.PatientConfig{Age: 60, DiagAdmission1: 11, Apache: 20, RespInsufficiency: 2, VentType: 1,
		ICUStay: 240, VentilationTime: 120, PreICUStay: 24, Percent: 10}, 50, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, 50, set.Len())
}

func TestLoadDriver_ForcedClusterSkipsCentroids(t *testing.T) {
	cal := repoFile(t, "defaults.yaml")
	d, err := loadDriver(cal, filepath.Join(t.TempDir(), "absent.csv"), 1, sim.ModeInt)
	require.NoError(t, err)
	assert.Equal(t, sim.FixedCluster(1), d.Classifier)
}

func TestLoadDriver_MissingCalibration(t *testing.T) {
	_, err := loadDriver(filepath.Join(t.TempDir(), "none.yaml"), "", 0, sim.ModeInt)
	assert.ErrorIs(t, err, sim.ErrDataUnavailable)
}

func testSet(t *testing.T) *sim.ReplicationSet {
	t.Helper()
	set, err := sim.ReplicationSetFromRecords([]map[string]any{
		{"pre_vam": 2, "vam": 48, "post_vam": 22, "icu_stay": 72, "post_icu_stay": 24},
		{"pre_vam": 4, "vam": 60, "post_vam": 32, "icu_stay": 96, "post_icu_stay": 48},
	}, sim.ModeInt)
	require.NoError(t, err)
	return set
}

func TestWriteReplication_Stdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReplication("-", &buf, testSet(t)))
	assert.Equal(t, "pre_vam,vam,post_vam,icu_stay,post_icu_stay\n2,48,22,72,24\n4,60,32,96,48\n", buf.String())
}

func TestWriteReplication_FilesRoundTrip(t *testing.T) {
	for _, name := range []string{"out.csv", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, writeReplication(path, nil, testSet(t)))
			got, err := dataset.ReadExperiment(path, sim.ModeInt)
			require.NoError(t, err)
			assert.Equal(t, testSet(t).Table(), got.Table())
		})
	}
}

func TestWriteSummary_Days(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, testSet(t), 0.95, true))
	out := buf.String()
	assert.Contains(t, out, "unit: days")
	assert.Contains(t, out, "name: icu_stay")
	// icu_stay of 72h and 96h average 3.5 days
	assert.Contains(t, out, "mean: 3.5")
}

func TestRunWilcoxon_TruncatesLongerSample(t *testing.T) {
	x := writeTemp(t, "x.csv", "vam\n1\n2\n3\n4\n5\n6\n")
	y := writeTemp(t, "y.csv", "Tiempo VAM\n2\n4\n6\n8\n")

	res, err := runWilcoxon(x, y, "vam")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Pairs)
	assert.Equal(t, 2, res.Dropped)
	// every difference is negative: W+ = 0
	assert.Equal(t, 0.0, res.Statistic)
}

func TestRunWilcoxon_IdenticalExperiments(t *testing.T) {
	x := writeTemp(t, "x.csv", "vam\n1\n2\n3\n")
	_, err := runWilcoxon(x, x, "")
	assert.ErrorIs(t, err, stats.ErrDegenerateInput)
}

func TestRunFriedman(t *testing.T) {
	a := writeTemp(t, "a.csv", "vam\n1\n1\n1\n1\n1\n")
	b := writeTemp(t, "b.csv", "vam\n2\n2\n2\n2\n2\n")
	c := writeTemp(t, "c.csv", "vam\n3\n3\n3\n")

	res, err := runFriedman([]string{a, b, c}, "vam")
	require.NoError(t, err)
	assert.Equal(t, 3, res.CommonLength)
	assert.True(t, res.Truncated)
	assert.InDelta(t, 6.0, res.Statistic, 1e-12)

	_, err = runFriedman([]string{a, b}, "vam")
	assert.ErrorIs(t, err, stats.ErrInvalidInput)
}

func TestValidateCohort_EndToEnd(t *testing.T) {
	cal := repoFile(t, "defaults.yaml")
	cent := repoFile(t, "data/centroids.csv")
	driver, err := loadDriver(cal, cent, -1, sim.ModeInt)
	require.NoError(t, err)

	header := "age,diag_admission1,diag_admission2,diag_admission3,diag_admission4,apache,resp_insufficiency,vent_type,icu_stay,vam_time,pre_icu_stay,pre_vam,post_vam,post_icu_stay"
	rows := []string{
		"61,11,0,0,0,20,2,1,200,120,24,8,72,96",
		"45,4,9,0,0,12,1,2,90,40,6,5,45,40",
		"78,30,2,0,0,31,3,1,700,400,80,30,270,150",
	}
	td, err := dataset.LoadTrueData(writeTemp(t, "true.csv", header+"\n"+strings.Join(rows, "\n")+"\n"))
	require.NoError(t, err)

	report, err := validateCohort(context.Background(), driver, td, 20, sim.NewSimulationKey(42), 2, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Patients)
	assert.Equal(t, 20, report.Runs)
	require.Len(t, report.Variables, len(sim.Variables))
	for _, v := range report.Variables {
		assert.GreaterOrEqual(t, v.CoveragePct, 0.0)
		assert.LessOrEqual(t, v.CoveragePct, 100.0)
	}

	again, err := validateCohort(context.Background(), driver, td, 20, sim.NewSimulationKey(42), 1, 0.95)
	require.NoError(t, err)
	assert.Equal(t, report, again)

	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, report))
	assert.Contains(t, buf.String(), "overall_ks:")
}
