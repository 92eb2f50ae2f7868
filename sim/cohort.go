package sim

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/simuci/simuci/sim/stats"
)

// CohortOptions configures SimulateCohort.
type CohortOptions struct {
	Runs    int
	Key     SimulationKey
	Workers int // <= 0 means one worker
}

// SimulateCohort runs a replication batch for every patient and stacks the
// results into a patients × runs × variables array, the layout the
// validator consumes. Patient i draws from SubsystemPatient(i) of a
// PartitionedRNG keyed by opts.Key, so the result does not depend on
// opts.Workers. Any patient failure fails the whole cohort.
func SimulateCohort(ctx context.Context, driver Driver, patients []PatientConfig, opts CohortOptions) (stats.SimulationArray, error) {
	if len(patients) == 0 {
		return nil, fmt.Errorf("empty cohort: %w", ErrInvalidInput)
	}
	if opts.Runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d: %w", opts.Runs, ErrInvalidInput)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	// Streams are derived here, on the calling goroutine.
	prng := NewPartitionedRNG(opts.Key)
	streams := make([]*rand.Rand, len(patients))
	for i := range patients {
		streams[i] = prng.ForSubsystem(SubsystemPatient(i))
	}

	out := make(stats.SimulationArray, len(patients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range patients {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			set, err := driver.Run(patients[i], opts.Runs, streams[i])
			if err != nil {
				return fmt.Errorf("patient %d: %w", i, err)
			}
			out[i] = set.Table()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
