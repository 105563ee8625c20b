package search

import (
	"context"
	"math"
	"math/rand"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

// Random draws independent uniform colors from a caller-owned generator.
type Random struct {
	rng      *rand.Rand
	maxPower float64
}

// RandomOption configures a Random strategy.
type RandomOption func(*Random)

// WithMaxPower scales every drawn channel by p, which must lie in [0, 1].
func WithMaxPower(p float64) RandomOption {
	return func(r *Random) {
		r.maxPower = p
	}
}

// NewRandom creates a random strategy drawing from rng.
// The generator is consumed in draw order, so sharing it with another
// component interleaves both streams.
func NewRandom(rng *rand.Rand, opts ...RandomOption) *Random {
	r := &Random{rng: rng, maxPower: 1.0}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RandomColorSearch runs a full-brightness random search with a background context.
func RandomColorSearch(evaluate EvaluateFunc, numIter int, rng *rand.Rand) (*Result, error) {
	return NewRandom(rng).Search(context.Background(), evaluate, numIter)
}

func (r *Random) Name() string { return "random" }

// Search draws numIter colors and evaluates each one in draw order.
func (r *Random) Search(ctx context.Context, evaluate EvaluateFunc, numIter int) (*Result, error) {
	if numIter < 0 {
		return nil, ErrNegativeIterations
	}
	if evaluate == nil {
		return nil, ErrNilEvaluate
	}
	if r.rng == nil {
		return nil, ErrNilRand
	}
	if err := checkMaxPower(r.maxPower); err != nil {
		return nil, err
	}

	res := newResult(numIter)
	for i := 0; i < numIter; i++ {
		c, err := RandomColor(r.rng, r.maxPower)
		if err != nil {
			return nil, err
		}
		if err := evaluateInto(ctx, res, evaluate, c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// RandomColor draws one color with channels round(255 * u * maxPower),
// u uniform in [0, 1), consuming three values from rng in R, G, B order.
func RandomColor(rng *rand.Rand, maxPower float64) (color.Color, error) {
	if rng == nil {
		return color.Color{}, ErrNilRand
	}
	if err := checkMaxPower(maxPower); err != nil {
		return color.Color{}, err
	}

	var ch [3]int
	for i := range ch {
		ch[i] = int(math.RoundToEven(color.MaxChannel * rng.Float64() * maxPower))
	}
	return color.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func checkMaxPower(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return ErrInvalidMaxPower
	}
	return nil
}
