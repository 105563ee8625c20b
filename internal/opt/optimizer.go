package opt

// Optimizer defines a continuous minimization algorithm over a box.
type Optimizer interface {
	// Run minimizes eval over the box [lower, upper]^dim.
	// Returns the best position found and its cost.
	Run(eval func([]float64) float64, lower, upper float64, dim int) ([]float64, float64, error)
}
