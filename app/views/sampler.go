package views

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// DistSampler draws from gonum's log-normal distribution over a single PCG
// source, so a fixed seed replays the same sequence.
type DistSampler struct {
	src rand.Source
}

// NewSampler seeds the source with seed, or with the clock when seed is 0.
func NewSampler(seed uint64) *DistSampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &DistSampler{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

func (s *DistSampler) LogNormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}
