// Package views fabricates per-message view counts for datasets whose source
// does not expose real ones. Every value it produces is synthetic.
package views

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lysyi3m/tg-comb/app/dataset"
)

const (
	MinViews = 5
	MaxViews = 50000

	// Channel popularity: exp(N(1, 1)).
	FactorMu    = 1.0
	FactorSigma = 1.0

	// Per-message base: exp(N(6, 1.2)), mean around 830 before the factor.
	BaseMu    = 6.0
	BaseSigma = 1.2
)

type Sampler interface {
	LogNormal(mu, sigma float64) float64
}

type Generator struct {
	sampler Sampler
}

func NewGenerator(sampler Sampler) *Generator {
	return &Generator{sampler: sampler}
}

// Generate returns one view count per group key, in order. Each distinct key
// draws its popularity factor once, the first time it is seen, and the factor
// is dropped when Generate returns.
func (g *Generator) Generate(keys []string) []int {
	factors := make(map[string]float64)
	values := make([]int, len(keys))

	for i, key := range keys {
		factor, ok := factors[key]
		if !ok {
			factor = g.sampler.LogNormal(FactorMu, FactorSigma)
			factors[key] = factor
		}

		base := g.sampler.LogNormal(BaseMu, BaseSigma)
		values[i] = scale(base, factor)
	}

	slog.Debug("Views generated", "rows", len(keys), "groups", len(factors))
	return values
}

// Run writes a Views column into ds, grouping rows by groupColumn. Rows
// without the column all fall into the "" group.
func (g *Generator) Run(ds *dataset.Dataset, groupColumn string) ([]int, error) {
	keys := make([]string, ds.Len())
	for i := range keys {
		keys[i], _ = ds.Value(i, groupColumn)
	}

	values := g.Generate(keys)

	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.Itoa(v)
	}
	if err := ds.SetColumn(dataset.ColumnViews, cells); err != nil {
		return nil, fmt.Errorf("failed to set views column: %w", err)
	}

	return values, nil
}

// scale truncates base*factor toward zero and clamps it. Products beyond the
// upper bound are clamped before the integer conversion.
func scale(base, factor float64) int {
	raw := base * factor
	if raw >= MaxViews {
		return MaxViews
	}
	return Clamp(int(raw))
}

func Clamp(v int) int {
	return max(min(v, MaxViews), MinViews)
}
