package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/lightmixsearch/internal/color"
	"github.com/cwbudde/lightmixsearch/internal/server"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}
	jobID := args[0]
	return getJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []server.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job.ID)
		fmt.Printf("  State: %s\n", job.State)
		fmt.Printf("  Strategy: %s (%s)\n", job.Config.Strategy, job.Config.Objective)
		fmt.Printf("  Evaluations: %d/%d\n", job.Evaluations, job.Config.Iters)
		if job.HasBest {
			fmt.Printf("  Best: %s (score %.4f)\n", job.Best, job.BestScore)
		}
		fmt.Println()
	}

	return nil
}

// jobStatus mirrors the server's status response.
type jobStatus struct {
	ID          string           `json:"id"`
	State       string           `json:"state"`
	Config      server.JobConfig `json:"config"`
	Evaluations int              `json:"evaluations"`
	Best        color.Color      `json:"best"`
	BestScore   float64          `json:"bestScore"`
	HasBest     bool             `json:"hasBest"`
	Saved       bool             `json:"saved"`
	Elapsed     float64          `json:"elapsed"`
	EPS         float64          `json:"eps"`
	Error       string           `json:"error"`
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status.ID)
	fmt.Printf("State: %s\n", status.State)
	fmt.Println()

	fmt.Println("Configuration:")
	fmt.Printf("  Strategy: %s\n", status.Config.Strategy)
	fmt.Printf("  Objective: %s\n", status.Config.Objective)
	fmt.Printf("  Budget: %d\n", status.Config.Iters)
	fmt.Printf("  Seed: %d\n", status.Config.Seed)
	fmt.Printf("  Noise: %g\n", status.Config.Noise)
	fmt.Printf("  Target: %s\n", status.Config.Target)
	fmt.Println()

	fmt.Println("Progress:")
	fmt.Printf("  Evaluations: %d\n", status.Evaluations)
	if status.HasBest {
		fmt.Printf("  Best Color: %s\n", status.Best)
		fmt.Printf("  Best Score: %.4f\n", status.BestScore)
	}
	elapsed := time.Duration(status.Elapsed * float64(time.Second))
	fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	if status.EPS > 0 {
		fmt.Printf("  Throughput: %.0f evaluations/sec\n", status.EPS)
	}
	if status.Saved {
		fmt.Println("  Saved: yes")
	}

	if status.Error != "" {
		fmt.Printf("\nError: %s\n", status.Error)
	}

	return nil
}
