package workload

import (
	"math/rand"
)

// ArrivalSampler generates inter-arrival times between consecutive
// processes.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in ticks.
	// Always returns a non-negative value.
	SampleIAT(rng *rand.Rand) int64
}

// ExponentialSampler generates exponentially-distributed inter-arrival
// times around a mean, the classic Poisson arrival process. Bursts of
// simultaneous arrivals (IAT 0) are allowed and exercise same-tick event
// ordering.
type ExponentialSampler struct {
	mean float64 // mean inter-arrival time in ticks
}

// NewExponentialSampler creates a sampler with the given mean gap.
func NewExponentialSampler(mean float64) *ExponentialSampler {
	return &ExponentialSampler{mean: mean}
}

func (s *ExponentialSampler) SampleIAT(rng *rand.Rand) int64 {
	iat := int64(rng.ExpFloat64() * s.mean)
	if iat < 0 {
		return 0
	}
	return iat
}

// uniformInt64 samples uniformly from [min, max].
func uniformInt64(rng *rand.Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rng.Int63n(max-min+1)
}

// uniformFloat samples uniformly from [min, max).
func uniformFloat(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}
