package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/lightmixsearch/internal/color"
	"github.com/cwbudde/lightmixsearch/internal/experiment"
	"github.com/cwbudde/lightmixsearch/internal/search"
)

// Run is a finished search as persisted to disk or database.
// Candidates and Scores are index-aligned in generation order.
type Run struct {
	// ID is the unique identifier for this run
	ID string `json:"id"`

	// Config is the experiment that produced the run
	Config experiment.Config `json:"config"`

	Candidates []color.Color `json:"candidates"`
	Scores     []float64     `json:"scores"`

	// Best is the lowest-scoring candidate; meaningless when Candidates is empty
	Best      color.Color `json:"best"`
	BestScore float64     `json:"bestScore"`

	// Elapsed is the search wall time
	Elapsed time.Duration `json:"elapsed"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo contains metadata about a run without the candidate data.
type RunInfo struct {
	ID          string      `json:"id"`
	Strategy    string      `json:"strategy"`
	Objective   string      `json:"objective"`
	Evaluations int         `json:"evaluations"`
	Best        color.Color `json:"best"`
	BestScore   float64     `json:"bestScore"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewRun creates a run record from a search result.
func NewRun(id string, cfg experiment.Config, result *search.Result, elapsed time.Duration) *Run {
	run := &Run{
		ID:         id,
		Config:     cfg,
		Candidates: append([]color.Color{}, result.Candidates...),
		Scores:     append([]float64{}, result.Scores...),
		Elapsed:    elapsed,
		Timestamp:  time.Now(),
	}
	run.Best, run.BestScore, _ = result.Best()
	return run
}

// Evaluations returns the number of evaluated candidates.
func (r *Run) Evaluations() int {
	return len(r.Candidates)
}

// Result returns the run's candidates and scores as a search result.
func (r *Run) Result() *search.Result {
	return &search.Result{
		Candidates: append([]color.Color{}, r.Candidates...),
		Scores:     append([]float64{}, r.Scores...),
	}
}

// ToInfo converts a full Run to RunInfo (metadata only).
func (r *Run) ToInfo() RunInfo {
	return RunInfo{
		ID:          r.ID,
		Strategy:    r.Config.Strategy,
		Objective:   r.Config.Objective,
		Evaluations: r.Evaluations(),
		Best:        r.Best,
		BestScore:   r.BestScore,
		Timestamp:   r.Timestamp,
	}
}

// Validate checks if the run has valid data.
func (r *Run) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if len(r.Candidates) != len(r.Scores) {
		return &ValidationError{
			Field:  "Scores",
			Reason: fmt.Sprintf("length mismatch: %d candidates, %d scores", len(r.Candidates), len(r.Scores)),
		}
	}
	for i, c := range r.Candidates {
		if err := c.Validate(); err != nil {
			return &ValidationError{Field: fmt.Sprintf("Candidates[%d]", i), Reason: err.Error()}
		}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if err := r.Config.Validate(); err != nil {
		return &ValidationError{Field: "Config", Reason: err.Error()}
	}
	return nil
}

// ValidationError represents a run validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
