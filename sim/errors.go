package sim

import (
	"errors"

	"github.com/simuci/simuci/sim/stats"
)

// ErrDataUnavailable reports that a required external table (centroids,
// calibration) is absent, empty or malformed. Simulation cannot proceed.
var ErrDataUnavailable = errors.New("required data unavailable")

// Sentinels shared with the stats package so callers of either package can
// match with errors.Is.
var (
	ErrInvalidInput    = stats.ErrInvalidInput
	ErrDegenerateInput = stats.ErrDegenerateInput
)
