package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/lightmixsearch/internal/color"
	"github.com/cwbudde/lightmixsearch/internal/experiment"
	"github.com/cwbudde/lightmixsearch/internal/store"
)

func TestRunJob_Success(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig(experiment.StrategyGrid, 27))

	err := runJob(context.Background(), jm, nil, job.ID, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}
	if updated.Evaluations != 27 {
		t.Errorf("Expected 27 evaluations, got %d", updated.Evaluations)
	}
	if !updated.HasBest {
		t.Error("Best should be set")
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set")
	}
	if updated.Saved {
		t.Error("Job without store should not be marked saved")
	}

	result, ok := jm.Result(job.ID)
	if !ok {
		t.Fatal("Result should be available")
	}
	if result.Len() != 27 {
		t.Errorf("Expected 27 candidates, got %d", result.Len())
	}
}

func TestRunJob_FindsTargetWithoutNoise(t *testing.T) {
	jm := NewJobManager()
	config := testConfig(experiment.StrategyGrid, 27)
	config.Target = color.Color{R: 255, G: 128, B: 0}
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, job.ID, 0); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.Best != config.Target {
		t.Errorf("Expected best %v, got %v", config.Target, updated.Best)
	}
	if updated.BestScore != 0 {
		t.Errorf("Expected zero score for exact grid hit, got %f", updated.BestScore)
	}
}

func TestRunJob_SavesRun(t *testing.T) {
	fsStore, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(testConfig(experiment.StrategyRandom, 12))

	if err := runJob(context.Background(), jm, fsStore, job.ID, 0); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if !updated.Saved {
		t.Error("Job should be marked saved")
	}

	run, err := fsStore.LoadRun(job.ID)
	if err != nil {
		t.Fatalf("Failed to load saved run: %v", err)
	}
	if run.Evaluations() != 12 {
		t.Errorf("Expected 12 evaluations, got %d", run.Evaluations())
	}
	if run.Best != updated.Best || run.BestScore != updated.BestScore {
		t.Errorf("Saved best %v/%f differs from job best %v/%f",
			run.Best, run.BestScore, updated.Best, updated.BestScore)
	}
}

func TestRunJob_InvalidConfig(t *testing.T) {
	jm := NewJobManager()
	config := testConfig("annealing", 10)
	job := jm.CreateJob(config)

	err := runJob(context.Background(), jm, nil, job.ID, 0)
	if err == nil {
		t.Error("runJob should fail with unknown strategy")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig(experiment.StrategyRandom, 1000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runJob(ctx, jm, nil, job.ID, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
	if _, ok := jm.Result(job.ID); ok {
		t.Error("Cancelled job should have no result")
	}
}

func TestRunJob_NotFound(t *testing.T) {
	jm := NewJobManager()

	if err := runJob(context.Background(), jm, nil, "nonexistent", 0); err == nil {
		t.Error("runJob should fail for unknown job")
	}
}

func TestRunJob_BroadcastsCompletion(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testConfig(experiment.StrategyGrid, 8))

	ch := jm.broadcaster.Subscribe(job.ID)
	defer jm.broadcaster.Unsubscribe(job.ID, ch)

	if err := runJob(context.Background(), jm, nil, job.ID, time.Hour); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	select {
	case event := <-ch:
		if event.State != StateCompleted {
			t.Errorf("Expected completed event, got %s", event.State)
		}
		if event.Evaluations != 8 {
			t.Errorf("Expected 8 evaluations in event, got %d", event.Evaluations)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for completion event")
	}
}
