// Package experiment wires a light mixer and a search strategy together
// through the evaluation-function contract.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/lightmixsearch/internal/color"
	"github.com/cwbudde/lightmixsearch/internal/metrics"
	"github.com/cwbudde/lightmixsearch/internal/search"
	"github.com/cwbudde/lightmixsearch/internal/sensor"
)

// Hook is called after every successful evaluation with its zero-based index.
type Hook func(index int, c color.Color, score float64)

// Outcome holds the output of a run
type Outcome struct {
	Result        *search.Result
	Best          color.Color
	BestScore     float64
	Found         bool // false when the budget produced no candidates
	Target        color.Color
	TargetReading sensor.Reading
	Elapsed       time.Duration
}

// NewMixer builds the light mixer for cfg, seeded with cfg.Seed.
func NewMixer(cfg Config, opts ...sensor.Option) (*sensor.LightMixer, error) {
	base := []sensor.Option{
		sensor.WithTarget(cfg.Target),
		sensor.WithNoise(cfg.Noise),
		sensor.WithSeed(cfg.Seed),
	}
	return sensor.New(append(base, opts...)...)
}

// NewStrategy builds the search strategy named in cfg. The random strategy
// gets its own generator seeded with cfg.Seed+1 so color draws never
// interleave with sensor noise.
func NewStrategy(cfg Config) (search.Strategy, error) {
	switch cfg.Strategy {
	case StrategyGrid:
		return search.Grid{}, nil
	case StrategyRandom:
		rng := rand.New(rand.NewSource(cfg.Seed + 1))
		return search.NewRandom(rng, search.WithMaxPower(cfg.MaxPower)), nil
	case StrategyMayfly:
		return search.Mayfly{PopSize: cfg.PopSize, Seed: cfg.Seed}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", cfg.Strategy)
	}
}

// Objective returns the evaluation function cfg selects on mixer.
func Objective(cfg Config, mixer *sensor.LightMixer) (search.EvaluateFunc, error) {
	switch cfg.Objective {
	case ObjectiveSensor:
		return mixer.Evaluate, nil
	case ObjectiveRGB:
		return mixer.EvaluateRGB, nil
	default:
		return nil, fmt.Errorf("unknown objective: %q", cfg.Objective)
	}
}

// Run executes one search described by cfg. hook may be nil.
// Errors from the objective are returned unwrapped.
func Run(ctx context.Context, cfg Config, hook Hook, opts ...sensor.Option) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment config: %w", err)
	}

	mixer, err := NewMixer(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create light mixer: %w", err)
	}
	strategy, err := NewStrategy(cfg)
	if err != nil {
		return nil, err
	}
	objective, err := Objective(cfg, mixer)
	if err != nil {
		return nil, err
	}

	slog.Info("Starting search",
		"strategy", strategy.Name(),
		"objective", cfg.Objective,
		"iters", cfg.Iters,
		"target", cfg.Target.String(),
	)

	evaluations := metrics.Evaluations.WithLabelValues(strategy.Name(), cfg.Objective)
	index := 0
	evaluate := func(c color.Color) (float64, error) {
		score, err := objective(c)
		if err != nil {
			return 0, err
		}
		evaluations.Inc()
		if hook != nil {
			hook(index, c, score)
		}
		index++
		return score, nil
	}

	start := time.Now()
	result, err := strategy.Search(ctx, evaluate, cfg.Iters)
	elapsed := time.Since(start)
	metrics.RunDuration.WithLabelValues(strategy.Name()).Observe(elapsed.Seconds())

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = "cancelled"
		}
		metrics.Runs.WithLabelValues(strategy.Name(), outcome).Inc()
		slog.Warn("Search stopped", "strategy", strategy.Name(), "evaluations", index, "error", err)
		return nil, err
	}
	metrics.Runs.WithLabelValues(strategy.Name(), "ok").Inc()

	out := &Outcome{
		Result:        result,
		Target:        mixer.Target(),
		TargetReading: mixer.TargetReading(),
		Elapsed:       elapsed,
	}
	out.Best, out.BestScore, out.Found = result.Best()

	slog.Info("Search complete",
		"strategy", strategy.Name(),
		"evaluations", result.Len(),
		"best", out.Best.String(),
		"best_score", out.BestScore,
		"elapsed", elapsed,
	)

	return out, nil
}
