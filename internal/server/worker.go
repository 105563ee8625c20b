package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/lightmixsearch/internal/color"
	"github.com/cwbudde/lightmixsearch/internal/experiment"
	"github.com/cwbudde/lightmixsearch/internal/metrics"
	"github.com/cwbudde/lightmixsearch/internal/store"
)

// DefaultProgressInterval throttles SSE progress updates to 2 per second.
const DefaultProgressInterval = 500 * time.Millisecond

// runJob executes a search job in the background.
// If runStore is not nil, the finished run is persisted under the job ID.
func runJob(ctx context.Context, jm *JobManager, runStore store.Store, jobID string, progressInterval time.Duration) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
		j.StartTime = time.Now()
	})
	if err != nil {
		return err
	}
	metrics.RunningJobs.Inc()
	defer metrics.RunningJobs.Dec()

	slog.Info("Starting job",
		"job_id", jobID,
		"strategy", job.Config.Strategy,
		"objective", job.Config.Objective,
		"iters", job.Config.Iters,
	)

	hook := func(index int, c color.Color, score float64) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Evaluations = index + 1
			if !j.HasBest || score < j.BestScore {
				j.Best = c
				j.BestScore = score
				j.HasBest = true
			}
		})
	}

	progressDone := make(chan struct{})
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		monitorProgress(ctx, jm, jobID, progressInterval, progressDone)
	}()

	outcome, err := experiment.Run(ctx, job.Config, hook)
	close(progressDone)
	<-monitorDone

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			markJobCancelled(jm, jobID)
		} else {
			markJobFailed(jm, jobID, err)
		}
		return err
	}

	saved := false
	if runStore != nil {
		run := store.NewRun(jobID, job.Config, outcome.Result, outcome.Elapsed)
		if err := runStore.SaveRun(run); err != nil {
			// The result stays available in memory
			slog.Error("Failed to save run", "job_id", jobID, "error", err)
		} else {
			saved = true
		}
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.result = outcome.Result
		j.Evaluations = outcome.Result.Len()
		j.Best = outcome.Best
		j.BestScore = outcome.BestScore
		j.HasBest = outcome.Found
		j.Saved = saved
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}
	metrics.Jobs.WithLabelValues(string(StateCompleted)).Inc()

	final, _ := jm.GetJob(jobID)
	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", outcome.Elapsed,
		"evaluations", final.Evaluations,
		"best", final.Best.String(),
		"best_score", final.BestScore,
	)

	jm.broadcaster.Broadcast(progressEvent(final))
	return nil
}

// monitorProgress periodically broadcasts progress events during a search
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, interval time.Duration, done chan struct{}) {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}
			jm.broadcaster.Broadcast(progressEvent(job))
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	finishJob(jm, jobID, StateFailed, err.Error())
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	finishJob(jm, jobID, StateCancelled, "")
	slog.Info("Job cancelled", "job_id", jobID)
}

func finishJob(jm *JobManager, jobID string, state JobState, message string) {
	endTime := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = state
		j.Error = message
		j.EndTime = &endTime
	}); err != nil {
		return
	}
	metrics.Jobs.WithLabelValues(string(state)).Inc()

	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(progressEvent(job))
	}
}
