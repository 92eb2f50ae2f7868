package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// envFile is read, when present, before flag defaults are resolved.
var envFile = ".env"

// envFlags maps flags to the environment variables that override their
// defaults. An explicitly set flag always wins.
var envFlags = []struct {
	flag, env string
}{
	{"calibration", "SIMUCI_CALIBRATION"},
	{"centroids", "SIMUCI_CENTROIDS"},
	{"log", "SIMUCI_LOG"},
}

// applyEnvDefaults loads envFile into the process environment (without
// overriding variables already set) and copies SIMUCI_* values into flags
// the user did not set.
func applyEnvDefaults(cmd *cobra.Command) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, ef := range envFlags {
		val, ok := os.LookupEnv(ef.env)
		if !ok || val == "" {
			continue
		}
		f := cmd.Flags().Lookup(ef.flag)
		if f == nil || f.Changed {
			continue
		}
		if err := cmd.Flags().Set(ef.flag, val); err != nil {
			return err
		}
	}
	return nil
}
