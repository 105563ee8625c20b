package store

// Store defines the interface for run persistence operations.
// Implementations must be thread-safe and handle concurrent access gracefully.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the run doesn't exist (for Load/Delete)
//   - Return descriptive errors for I/O, serialization, or validation failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun saves a finished run. An existing run with the same ID is
	// overwritten. The run is validated before anything is written.
	SaveRun(run *Run) error

	// LoadRun retrieves the run with the given ID.
	// Returns ErrNotFound if no such run exists.
	LoadRun(id string) (*Run, error)

	// ListRuns returns metadata for all stored runs, oldest first.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run and all associated artifacts (trace.jsonl
	// for the filesystem store).
	// Returns ErrNotFound if no such run exists.
	DeleteRun(id string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
