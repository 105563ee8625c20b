package search

import (
	"context"
	"math"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

// Grid enumerates an evenly spaced lattice over the RGB cube.
//
// For a budget n the per-channel resolution is k = floor(cbrt(n)), so exactly
// k^3 candidates are produced. Red varies slowest and blue fastest.
type Grid struct{}

// GridColorSearch runs a grid search with a background context.
func GridColorSearch(evaluate EvaluateFunc, numIter int) (*Result, error) {
	return Grid{}.Search(context.Background(), evaluate, numIter)
}

func (Grid) Name() string { return "grid" }

// Search evaluates every point of the k×k×k lattice in R, G, B nesting order.
func (Grid) Search(ctx context.Context, evaluate EvaluateFunc, numIter int) (*Result, error) {
	if numIter < 0 {
		return nil, ErrNegativeIterations
	}
	if evaluate == nil {
		return nil, ErrNilEvaluate
	}

	values := GridValues(GridResolution(numIter))
	res := newResult(len(values) * len(values) * len(values))

	for _, r := range values {
		for _, g := range values {
			for _, b := range values {
				if err := evaluateInto(ctx, res, evaluate, color.Color{R: r, G: g, B: b}); err != nil {
					return nil, err
				}
			}
		}
	}

	return res, nil
}

// GridResolution returns the largest k with k^3 <= numIter, or 0 when numIter < 1.
func GridResolution(numIter int) int {
	if numIter < 1 {
		return 0
	}
	k := int(math.Cbrt(float64(numIter)))
	for cubeAtMost(k+1, numIter) {
		k++
	}
	for k > 0 && !cubeAtMost(k, numIter) {
		k--
	}
	return k
}

// cubeAtMost reports whether k^3 <= n without forming k^3.
func cubeAtMost(k, n int) bool {
	return k <= n/k/k
}

// GridValues returns k evenly spaced channel values spanning [0, 255],
// rounded half to even. Both endpoints are included when k >= 2; k == 1
// yields the midpoint.
func GridValues(k int) []int {
	switch {
	case k <= 0:
		return nil
	case k == 1:
		return []int{int(math.RoundToEven(color.MaxChannel / 2.0))}
	}

	values := make([]int, k)
	step := float64(color.MaxChannel) / float64(k-1)
	for i := range values {
		values[i] = int(math.RoundToEven(float64(i) * step))
	}
	values[k-1] = color.MaxChannel
	return values
}
