// Package search proposes candidate colors and scores them with a
// caller-supplied evaluation function.
//
// Strategies never look at what the evaluation function does; a light mixer
// objective, an RGB distance or a test stub are all the same to them.
// Candidates and scores are index-aligned and kept in generation order.
package search

import (
	"context"
	"errors"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

var (
	// ErrNegativeIterations is returned when a strategy is asked for a negative budget.
	ErrNegativeIterations = errors.New("number of iterations must not be negative")

	// ErrInvalidMaxPower is returned when a brightness factor lies outside [0, 1].
	ErrInvalidMaxPower = errors.New("max power must be within [0, 1]")

	// ErrNilEvaluate is returned when no evaluation function is supplied.
	ErrNilEvaluate = errors.New("evaluation function is nil")

	// ErrNilRand is returned when a random strategy has no generator.
	ErrNilRand = errors.New("random generator is nil")
)

// EvaluateFunc scores a candidate color. Lower is better.
// Any error it returns is passed through to the search caller unchanged.
type EvaluateFunc func(c color.Color) (float64, error)

// Strategy is a color search algorithm.
type Strategy interface {
	// Name identifies the strategy in logs, configs and stored runs.
	Name() string

	// Search evaluates candidates until the budget is spent.
	// The context is checked between evaluations.
	Search(ctx context.Context, evaluate EvaluateFunc, numIter int) (*Result, error)
}

// Result holds every candidate a strategy produced and its score.
type Result struct {
	Candidates []color.Color `json:"candidates"`
	Scores     []float64     `json:"scores"`
}

// maxPrealloc bounds the up-front allocation for large budgets.
const maxPrealloc = 1 << 16

func newResult(capacity int) *Result {
	capacity = min(capacity, maxPrealloc)
	return &Result{
		Candidates: make([]color.Color, 0, capacity),
		Scores:     make([]float64, 0, capacity),
	}
}

func (r *Result) add(c color.Color, score float64) {
	r.Candidates = append(r.Candidates, c)
	r.Scores = append(r.Scores, score)
}

// Len returns the number of evaluated candidates.
func (r *Result) Len() int {
	return len(r.Candidates)
}

// Best returns the lowest-scoring candidate. Ties keep the earliest one.
// ok is false when the result is empty.
func (r *Result) Best() (best color.Color, score float64, ok bool) {
	for i, s := range r.Scores {
		if !ok || s < score {
			best, score, ok = r.Candidates[i], s, true
		}
	}
	return best, score, ok
}

// evaluateInto checks for cancellation, evaluates c and appends it to res.
func evaluateInto(ctx context.Context, res *Result, evaluate EvaluateFunc, c color.Color) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	score, err := evaluate(c)
	if err != nil {
		return err
	}
	res.add(c, score)
	return nil
}
