package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MinPopulation is the smallest population mayfly v0.1.0 accepts.
const MinPopulation = 20

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter.
// popSize is raised to MinPopulation when smaller.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  EffectivePopSize(popSize),
		seed:     seed,
	}
}

// EffectivePopSize returns the population mayfly will actually run with.
func EffectivePopSize(popSize int) int {
	return max(popSize, MinPopulation)
}

// PopSize returns the effective population size.
func (m *MayflyAdapter) PopSize() int {
	return m.popSize
}

// Run executes the Mayfly optimization using the external library
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper float64, dim int) ([]float64, float64, error) {
	if dim <= 0 {
		return nil, 0, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if lower >= upper {
		return nil, 0, fmt.Errorf("invalid bounds [%g, %g]", lower, upper)
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lower
	config.UpperBound = upper
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, 0, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return result.GlobalBest.Position, result.GlobalBest.Cost, nil
}
