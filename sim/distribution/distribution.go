// Package distribution provides the parametric duration samplers backing
// each (stage, cluster) pair of the stage simulator, and the calibration
// file that configures them.
package distribution

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

// DurationSampler draws stage durations in hours.
type DurationSampler interface {
	// Sample returns a finite, non-negative duration.
	Sample(rng *rand.Rand) float64
}

// DistSpec parameterizes a duration distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// nonNegative maps negative and non-finite draws to 0.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// GaussianSampler produces normal durations clamped to [min, max].
type GaussianSampler struct {
	mean, stdDev float64
	min, max     float64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) float64 {
	if s.min == s.max {
		return nonNegative(s.min)
	}
	val := distuv.Normal{Mu: s.mean, Sigma: s.stdDev, Src: rng}.Rand()
	return nonNegative(math.Min(s.max, math.Max(s.min, val)))
}

// ExponentialSampler produces exponentially distributed durations.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return nonNegative(distuv.Exponential{Rate: 1 / s.mean, Src: rng}.Rand())
}

// LogNormalSampler draws exp(mu + sigma*Z).
type LogNormalSampler struct {
	mu, sigma float64
}

func (s *LogNormalSampler) Sample(rng *rand.Rand) float64 {
	return nonNegative(distuv.LogNormal{Mu: s.mu, Sigma: s.sigma, Src: rng}.Rand())
}

// WeibullSampler draws from Weibull(shape, scale).
type WeibullSampler struct {
	shape, scale float64
}

func (s *WeibullSampler) Sample(rng *rand.Rand) float64 {
	return nonNegative(distuv.Weibull{K: s.shape, Lambda: s.scale, Src: rng}.Rand())
}

// GammaSampler draws from Gamma(shape, rate); the mean is shape/rate.
type GammaSampler struct {
	shape, rate float64
}

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return nonNegative(distuv.Gamma{Alpha: s.shape, Beta: s.rate, Src: rng}.Rand())
}

// ParetoLogNormalSampler is a mixture of Pareto and LogNormal distributions.
// With probability mixWeight, draw from Pareto(alpha, xm); otherwise LogNormal(mu, sigma).
// Long-stay outliers sit in the Pareto tail.
type ParetoLogNormalSampler struct {
	alpha     float64 // Pareto shape
	xm        float64 // Pareto scale (minimum)
	mu        float64 // LogNormal mean of ln(X)
	sigma     float64 // LogNormal std dev of ln(X)
	mixWeight float64 // Probability of drawing from Pareto
}

func (s *ParetoLogNormalSampler) Sample(rng *rand.Rand) float64 {
	if rng.Float64() < s.mixWeight {
		// X = xm / U^(1/alpha)
		u := rng.Float64()
		if u == 0 {
			u = math.SmallestNonzeroFloat64
		}
		return nonNegative(s.xm / math.Pow(u, 1.0/s.alpha))
	}
	return nonNegative(math.Exp(s.mu + s.sigma*rng.NormFloat64()))
}

// EmpiricalSampler samples from a binned empirical distribution using
// inverse CDF via binary search.
type EmpiricalSampler struct {
	values []float64 // sorted durations
	cdf    []float64 // cumulative probabilities, same length as values
}

// NewEmpiricalSampler creates a sampler from a duration → probability map.
// Probabilities are normalized; non-positive weights are dropped.
func NewEmpiricalSampler(pdf map[float64]float64) *EmpiricalSampler {
	keys := make([]float64, 0, len(pdf))
	total := 0.0
	for k, p := range pdf {
		if p <= 0 {
			continue
		}
		keys = append(keys, k)
		total += p
	}
	sort.Float64s(keys)

	values := make([]float64, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		cumulative += pdf[k] / total
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}
	return &EmpiricalSampler{values: values, cdf: cdf}
}

func (s *EmpiricalSampler) Sample(rng *rand.Rand) float64 {
	if len(s.values) == 0 {
		return 0
	}
	if len(s.values) == 1 {
		return nonNegative(s.values[0])
	}
	idx := sort.SearchFloat64s(s.cdf, rng.Float64())
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return nonNegative(s.values[idx])
}

// ConstantSampler always returns the same value and consumes no randomness.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return nonNegative(s.value)
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// requirePositive checks that the named params are strictly positive.
func requirePositive(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if params[k] <= 0 {
			return fmt.Errorf("parameter %q must be positive, got %v", k, params[k])
		}
	}
	return nil
}

// NewDurationSampler creates a DurationSampler from a DistSpec.
func NewDurationSampler(spec DistSpec) (DurationSampler, error) {
	for name, val := range spec.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("parameter %q must be a finite number, got %v", name, val)
		}
	}
	p := spec.Params
	switch spec.Type {
	case "gaussian":
		if err := requireParam(p, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		if p["std_dev"] < 0 {
			return nil, fmt.Errorf("parameter \"std_dev\" must be non-negative, got %v", p["std_dev"])
		}
		if p["min"] > p["max"] {
			return nil, fmt.Errorf("gaussian min %v exceeds max %v", p["min"], p["max"])
		}
		return &GaussianSampler{mean: p["mean"], stdDev: p["std_dev"], min: p["min"], max: p["max"]}, nil

	case "exponential":
		if err := requireParam(p, "mean"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{mean: p["mean"]}, nil

	case "lognormal":
		if err := requireParam(p, "mu", "sigma"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "sigma"); err != nil {
			return nil, err
		}
		return &LogNormalSampler{mu: p["mu"], sigma: p["sigma"]}, nil

	case "weibull":
		if err := requireParam(p, "shape", "scale"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "shape", "scale"); err != nil {
			return nil, err
		}
		return &WeibullSampler{shape: p["shape"], scale: p["scale"]}, nil

	case "gamma":
		if err := requireParam(p, "shape", "rate"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "shape", "rate"); err != nil {
			return nil, err
		}
		return &GammaSampler{shape: p["shape"], rate: p["rate"]}, nil

	case "pareto_lognormal":
		if err := requireParam(p, "alpha", "xm", "mu", "sigma", "mix_weight"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "alpha", "xm"); err != nil {
			return nil, err
		}
		if w := p["mix_weight"]; w < 0 || w > 1 {
			return nil, fmt.Errorf("parameter \"mix_weight\" must be in [0, 1], got %v", w)
		}
		return &ParetoLogNormalSampler{
			alpha:     p["alpha"],
			xm:        p["xm"],
			mu:        p["mu"],
			sigma:     p["sigma"],
			mixWeight: p["mix_weight"],
		}, nil

	case "constant":
		if err := requireParam(p, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: p["value"]}, nil

	case "empirical":
		// Params keys are durations in hours, values their probabilities.
		pdf := make(map[float64]float64, len(p))
		for k, v := range p {
			d, err := strconv.ParseFloat(k, 64)
			if err != nil {
				return nil, fmt.Errorf("empirical bin %q is not a number: %w", k, err)
			}
			pdf[d] = v
		}
		s := NewEmpiricalSampler(pdf)
		if len(s.values) == 0 {
			return nil, fmt.Errorf("empirical distribution has no bins with positive probability")
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q; valid: %s", spec.Type, validTypeList)
	}
}

const validTypeList = "gaussian, exponential, lognormal, weibull, gamma, pareto_lognormal, empirical, constant"
