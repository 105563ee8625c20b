package sensor

import (
	"sync"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

// Experiment is one simulated measurement.
type Experiment struct {
	Color   color.Color `json:"color"`
	Reading Reading     `json:"reading"`
}

// Recorder observes every experiment a mixer runs, including the one
// performed at construction for the target color.
type Recorder interface {
	Record(Experiment)
}

// History is an append-only Recorder safe for concurrent use.
type History struct {
	mu          sync.Mutex
	experiments []Experiment
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Record appends an experiment.
func (h *History) Record(e Experiment) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.experiments = append(h.experiments, Experiment{Color: e.Color, Reading: e.Reading.Clone()})
}

// Len returns the number of recorded experiments.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.experiments)
}

// Experiments returns a copy of all recorded experiments in order.
func (h *History) Experiments() []Experiment {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Experiment, len(h.experiments))
	for i, e := range h.experiments {
		out[i] = Experiment{Color: e.Color, Reading: e.Reading.Clone()}
	}
	return out
}
