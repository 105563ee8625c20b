package search

import (
	"context"
	"math"

	"github.com/cwbudde/lightmixsearch/internal/color"
	"github.com/cwbudde/lightmixsearch/internal/opt"
)

// Mayfly searches the RGB cube with the mayfly metaheuristic.
//
// Positions are continuous and rounded half to even onto integer colors
// before evaluation. The budget maps to max(1, numIter/PopSize) mayfly
// iterations, so the evaluation count is approximate; every evaluation the
// optimizer makes is recorded in the result.
type Mayfly struct {
	PopSize int
	Seed    int64
}

func (Mayfly) Name() string { return "mayfly" }

// Search runs the optimizer and returns all evaluated candidates.
func (m Mayfly) Search(ctx context.Context, evaluate EvaluateFunc, numIter int) (*Result, error) {
	if numIter < 0 {
		return nil, ErrNegativeIterations
	}
	if evaluate == nil {
		return nil, ErrNilEvaluate
	}

	res := newResult(numIter)
	if numIter == 0 {
		return res, nil
	}

	pop := opt.EffectivePopSize(m.PopSize)
	optimizer := opt.NewMayfly(max(1, numIter/pop), pop, m.Seed)

	// The optimizer has no error channel, so the first failure is kept and
	// later positions score +Inf without reaching evaluate.
	var evalErr error
	objective := func(x []float64) float64 {
		if evalErr != nil {
			return math.Inf(1)
		}
		evalErr = evaluateInto(ctx, res, evaluate, positionToColor(x))
		if evalErr != nil {
			return math.Inf(1)
		}
		return res.Scores[len(res.Scores)-1]
	}

	if _, _, err := optimizer.Run(objective, 0, color.MaxChannel, 3); err != nil {
		return nil, err
	}
	if evalErr != nil {
		return nil, evalErr
	}
	return res, nil
}

func positionToColor(x []float64) color.Color {
	var ch [3]int
	for i := range ch {
		v := math.RoundToEven(x[i])
		ch[i] = int(math.Max(0, math.Min(color.MaxChannel, v)))
	}
	return color.Color{R: ch[0], G: ch[1], B: ch[2]}
}
