package experiment

import (
	"fmt"
	"math"

	"github.com/cwbudde/lightmixsearch/internal/color"
	"github.com/cwbudde/lightmixsearch/internal/sensor"
)

// Strategy names.
const (
	StrategyGrid   = "grid"
	StrategyRandom = "random"
	StrategyMayfly = "mayfly"
)

// Objective names.
const (
	// ObjectiveSensor scores a candidate by running it through the mixer
	// and comparing readings with the target reading.
	ObjectiveSensor = "sensor"

	// ObjectiveRGB scores a candidate by its channel distance to the target color.
	ObjectiveRGB = "rgb"
)

// Config describes one search run.
type Config struct {
	Strategy  string      `json:"strategy" yaml:"strategy"`
	Objective string      `json:"objective" yaml:"objective"`
	Iters     int         `json:"iters" yaml:"iters"`
	Seed      int64       `json:"seed" yaml:"seed"`
	Noise     float64     `json:"noise" yaml:"noise"`
	MaxPower  float64     `json:"maxPower" yaml:"max_power"`
	PopSize   int         `json:"popSize,omitempty" yaml:"pop_size,omitempty"` // mayfly only
	Target    color.Color `json:"target" yaml:"target"`
}

// DefaultConfig returns the baseline run. Decoders unmarshal into it so that
// absent fields keep these values.
func DefaultConfig() Config {
	return Config{
		Strategy:  StrategyGrid,
		Objective: ObjectiveSensor,
		Iters:     27,
		Seed:      sensor.DefaultSeed,
		Noise:     sensor.DefaultNoise,
		MaxPower:  1.0,
		PopSize:   20,
		Target:    sensor.DefaultTarget,
	}
}

// Validate checks the config and returns the first problem found.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyGrid, StrategyRandom, StrategyMayfly:
	default:
		return fmt.Errorf("unknown strategy: %q (must be grid, random, or mayfly)", c.Strategy)
	}
	switch c.Objective {
	case ObjectiveSensor, ObjectiveRGB:
	default:
		return fmt.Errorf("unknown objective: %q (must be sensor or rgb)", c.Objective)
	}
	if c.Iters < 0 {
		return fmt.Errorf("iters cannot be negative: %d", c.Iters)
	}
	if c.Noise < 0 || math.IsNaN(c.Noise) || math.IsInf(c.Noise, 0) {
		return fmt.Errorf("noise must be a finite, non-negative fraction: %g", c.Noise)
	}
	if math.IsNaN(c.MaxPower) || c.MaxPower < 0 || c.MaxPower > 1 {
		return fmt.Errorf("max power must be within [0, 1]: %g", c.MaxPower)
	}
	if c.PopSize < 0 {
		return fmt.Errorf("pop size cannot be negative: %d", c.PopSize)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	return nil
}
