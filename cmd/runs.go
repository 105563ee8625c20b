package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/lightmixsearch/internal/store"
)

var (
	keepLast      int
	olderThanDays int
	forceClean    bool
	showJSON      bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved search runs",
	Long:  `List, inspect, delete and clean runs saved by "run --save" or the job server.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved runs",
	Long:  `Display all runs with metadata including ID, timestamp, strategy, evaluations, best color and score.`,
	Args:  cobra.NoArgs,
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var deleteRunCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete a saved run and its trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteRun,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old runs",
	Long: `Delete old runs based on retention policy.
You can keep the N most recent runs or delete runs older than N days.`,
	Args: cobra.NoArgs,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(deleteRunCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	addDataFlags(runsCmd, true)

	showRunCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full run as JSON")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func openRunStore(cmd *cobra.Command) (store.Store, func() error, string, error) {
	dataDir, kind := dataFlags(cmd)
	runStore, closeStore, err := store.Open(kind, dataDir)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open store: %w", err)
	}
	return runStore, closeStore, dataDir, nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, closeStore, dataDir, err := openRunStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tSTRATEGY\tEVALS\tBEST\tSCORE\tSIZE")
	fmt.Fprintln(w, "------\t---------\t--------\t-----\t----\t-----\t----")

	for _, info := range infos {
		// Size covers the run directory, which holds the trace for either store
		sizeStr := "-"
		if size, err := getDirSize(store.RunDir(dataDir, info.ID)); err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.4f\t%s\n",
			shortID(info.ID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Strategy,
			info.Evaluations,
			info.Best,
			info.BestScore,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, closeStore, dataDir, err := openRunStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	run, err := runStore.LoadRun(args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("run not found: %s", args[0])
	}
	if err != nil {
		return err
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("Run: %s\n", run.ID)
	fmt.Printf("Timestamp: %s\n", run.Timestamp.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Strategy: %s\n", run.Config.Strategy)
	fmt.Printf("  Objective: %s\n", run.Config.Objective)
	fmt.Printf("  Budget: %d\n", run.Config.Iters)
	fmt.Printf("  Seed: %d\n", run.Config.Seed)
	fmt.Printf("  Noise: %g\n", run.Config.Noise)
	fmt.Printf("  Target: %s\n", run.Config.Target)
	fmt.Println()
	fmt.Println("Result:")
	res := run.Result()
	fmt.Printf("  Evaluations: %d in %s\n", res.Len(), run.Elapsed)
	if best, score, ok := res.Best(); ok {
		fmt.Printf("  Best Color: %s\n", best)
		fmt.Printf("  Best Score: %.4f\n", score)
	}

	if reader, err := store.NewTraceReader(dataDir, run.ID); err == nil {
		entries, err := reader.ReadAll()
		reader.Close()
		if err == nil {
			fmt.Printf("  Trace: %d entries\n", len(entries))
		}
	}
	return nil
}

func runDeleteRun(cmd *cobra.Command, args []string) error {
	runStore, closeStore, dataDir, err := openRunStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := deleteRun(runStore, dataDir, args[0]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("run not found: %s", args[0])
		}
		return err
	}
	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}

// deleteRun removes a run from the store and its trace from disk.
func deleteRun(runStore store.Store, dataDir, runID string) error {
	if err := runStore.DeleteRun(runID); err != nil {
		return err
	}
	if err := store.DeleteTrace(dataDir, runID); err != nil {
		slog.Warn("Failed to delete trace", "run_id", runID, "error", err)
	}
	// Leftover directory of a non-fs store
	os.Remove(store.RunDir(dataDir, runID))
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, closeStore, dataDir, err := openRunStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Println("No runs match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (%s, %d evaluations, %s)\n",
			shortID(info.ID),
			info.Strategy,
			info.Evaluations,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := deleteRun(runStore, dataDir, info.ID); err != nil {
			slog.Error("Failed to delete run", "run_id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "run_id", info.ID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy: runs older than
// olderThanDays, plus all but the keepLast most recent runs. Each run is
// selected at most once; the result is oldest first.
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int, now time.Time) []store.RunInfo {
	sorted := make([]store.RunInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	cutoff := now.AddDate(0, 0, -olderThanDays)
	excess := 0
	if keepLast > 0 && len(sorted) > keepLast {
		excess = len(sorted) - keepLast
	}

	var toDelete []store.RunInfo
	for i, info := range sorted {
		tooOld := olderThanDays > 0 && info.Timestamp.Before(cutoff)
		if tooOld || i < excess {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
