package sensor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

const (
	// DefaultNoise is the default noise standard deviation as a fraction of the signal.
	DefaultNoise = 0.1

	// DefaultSeed seeds the mixer's generator when none is supplied.
	DefaultSeed int64 = 42
)

// DefaultTarget is the color a mixer aims for unless told otherwise.
var DefaultTarget = color.Color{R: 255, G: 127, B: 63}

var (
	// ErrMissingChannel is returned when a reading lacks a configured band.
	ErrMissingChannel = errors.New("missing channel")

	// ErrUnknownChannel is returned when a reading carries a band the mixer does not have.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrInvalidNoise is returned for a negative or non-finite noise fraction.
	ErrInvalidNoise = errors.New("noise must be a finite, non-negative fraction")
)

// LightMixer drives three LEDs and reports what the spectral sensor sees.
//
// The target reading is measured once at construction and never changes.
// The generator and recorder are guarded by a mutex, so a mixer can be
// shared between goroutines; draws then happen in lock order.
type LightMixer struct {
	noise  float64
	target color.Color

	mu       sync.Mutex
	rng      *rand.Rand
	recorder Recorder

	targetReading Reading
}

// Option configures a LightMixer.
type Option func(*LightMixer)

// WithTarget sets the target color.
func WithTarget(c color.Color) Option {
	return func(m *LightMixer) {
		m.target = c
	}
}

// WithNoise sets the noise fraction. Zero makes experiments deterministic.
func WithNoise(noise float64) Option {
	return func(m *LightMixer) {
		m.noise = noise
	}
}

// WithRand hands the mixer a caller-owned generator.
func WithRand(rng *rand.Rand) Option {
	return func(m *LightMixer) {
		m.rng = rng
	}
}

// WithSeed gives the mixer its own generator seeded with seed.
func WithSeed(seed int64) Option {
	return func(m *LightMixer) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRecorder attaches an observer for every experiment.
func WithRecorder(r Recorder) Option {
	return func(m *LightMixer) {
		m.recorder = r
	}
}

// New builds a mixer and measures the target reading.
func New(opts ...Option) (*LightMixer, error) {
	m := &LightMixer{
		noise:  DefaultNoise,
		target: DefaultTarget,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.noise < 0 || math.IsNaN(m.noise) || math.IsInf(m.noise, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidNoise, m.noise)
	}
	if err := m.target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target color: %w", err)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(DefaultSeed))
	}

	reading, err := m.RunColorExperiment(m.target)
	if err != nil {
		return nil, err
	}
	m.targetReading = reading.Clone()

	return m, nil
}

// RunColorExperiment sets the LEDs to c and returns a noisy sensor reading.
//
// Each band is the weighted sum of the three channels, perturbed by a normal
// draw with standard deviation |noise * intensity|. Every call consumes
// generator state, so repeated calls with the same color differ unless the
// noise is zero.
func (m *LightMixer) RunColorExperiment(c color.Color) (Reading, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	reading := make(Reading, len(labels))
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	for i, label := range labels {
		intensity := redCoefficients[i]*r + greenCoefficients[i]*g + blueCoefficients[i]*b
		stddev := math.Abs(m.noise * intensity)
		reading[label] = m.rng.NormFloat64()*stddev + intensity
	}

	if m.recorder != nil {
		m.recorder.Record(Experiment{Color: c, Reading: reading.Clone()})
	}

	return reading, nil
}

// CalculateObjective returns the mean absolute difference between reading
// and the target reading, pairing bands by sorted label.
func (m *LightMixer) CalculateObjective(reading Reading) (float64, error) {
	for _, label := range reading.SortedLabels() {
		if _, ok := m.targetReading[label]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownChannel, label)
		}
	}

	keys := m.targetReading.SortedLabels()
	var sum float64
	for _, label := range keys {
		v, ok := reading[label]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingChannel, label)
		}
		sum += math.Abs(v - m.targetReading[label])
	}
	return sum / float64(len(keys)), nil
}

// CalculateRGBMismatch returns the mean absolute channel difference between
// c and the target color. It skips the sensor entirely.
func (m *LightMixer) CalculateRGBMismatch(c color.Color) float64 {
	var sum float64
	want := m.target.Channels()
	for i, v := range c.Channels() {
		sum += math.Abs(float64(v - want[i]))
	}
	return sum / 3
}

// Evaluate runs an experiment at c and scores it against the target reading.
func (m *LightMixer) Evaluate(c color.Color) (float64, error) {
	reading, err := m.RunColorExperiment(c)
	if err != nil {
		return 0, err
	}
	return m.CalculateObjective(reading)
}

// EvaluateRGB scores c by RGB mismatch.
func (m *LightMixer) EvaluateRGB(c color.Color) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return m.CalculateRGBMismatch(c), nil
}

// Target returns the target color.
func (m *LightMixer) Target() color.Color {
	return m.target
}

// Noise returns the noise fraction.
func (m *LightMixer) Noise() float64 {
	return m.noise
}

// TargetReading returns a copy of the cached target reading.
func (m *LightMixer) TargetReading() Reading {
	return m.targetReading.Clone()
}
