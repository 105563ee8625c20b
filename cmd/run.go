package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/lightmixsearch/internal/experiment"
	"github.com/cwbudde/lightmixsearch/internal/store"
)

var (
	saveRun   bool
	saveTrace bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single color search",
	Long: `Runs one color search against the simulated light mixer and prints the
best color found. Flags override values from --config.`,
	RunE: runSearch,
}

func init() {
	addExperimentFlags(runCmd.Flags())
	addDataFlags(runCmd, false)
	runCmd.Flags().BoolVar(&saveRun, "save", false, "Save the run to the store")
	runCmd.Flags().BoolVar(&saveTrace, "trace", false, "Write a per-evaluation JSONL trace (implies --save)")
	rootCmd.AddCommand(runCmd)
}

// addExperimentFlags registers the search flags on fs with the built-in defaults.
func addExperimentFlags(fs *pflag.FlagSet) {
	d := experiment.DefaultConfig()
	fs.String("strategy", d.Strategy, "Search strategy: grid, random, mayfly")
	fs.String("objective", d.Objective, "Objective: sensor, rgb")
	fs.Int("iters", d.Iters, "Evaluation budget")
	fs.Int64("seed", d.Seed, "Random seed")
	fs.Float64("noise", d.Noise, "Sensor noise as a fraction of intensity")
	fs.Float64("max-power", d.MaxPower, "Random search channel scale in [0, 1]")
	fs.Int("pop", d.PopSize, "Mayfly population size")
	fs.Int("target-r", d.Target.R, "Target red channel")
	fs.Int("target-g", d.Target.G, "Target green channel")
	fs.Int("target-b", d.Target.B, "Target blue channel")
}

// applyExperimentFlags copies explicitly set flags from fs onto cfg.
func applyExperimentFlags(fs *pflag.FlagSet, cfg *experiment.Config) {
	if fs.Changed("strategy") {
		cfg.Strategy, _ = fs.GetString("strategy")
	}
	if fs.Changed("objective") {
		cfg.Objective, _ = fs.GetString("objective")
	}
	if fs.Changed("iters") {
		cfg.Iters, _ = fs.GetInt("iters")
	}
	if fs.Changed("seed") {
		cfg.Seed, _ = fs.GetInt64("seed")
	}
	if fs.Changed("noise") {
		cfg.Noise, _ = fs.GetFloat64("noise")
	}
	if fs.Changed("max-power") {
		cfg.MaxPower, _ = fs.GetFloat64("max-power")
	}
	if fs.Changed("pop") {
		cfg.PopSize, _ = fs.GetInt("pop")
	}
	if fs.Changed("target-r") {
		cfg.Target.R, _ = fs.GetInt("target-r")
	}
	if fs.Changed("target-g") {
		cfg.Target.G, _ = fs.GetInt("target-g")
	}
	if fs.Changed("target-b") {
		cfg.Target.B, _ = fs.GetInt("target-b")
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Experiment
	applyExperimentFlags(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		runID  = uuid.New().String()
		hook   experiment.Hook
		tracer *store.TraceWriter
	)
	dataDir, kind := dataFlags(cmd)
	persist := saveRun || saveTrace

	if saveTrace {
		tw, err := store.NewTraceWriter(dataDir, runID, false)
		if err != nil {
			return fmt.Errorf("failed to create trace writer: %w", err)
		}
		defer tw.Close()
		tracer = tw
		hook = tw.Hook()
	}

	outcome, err := experiment.Run(ctx, cfg, hook)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if tracer != nil {
		if err := tracer.Err(); err != nil {
			slog.Warn("Trace incomplete", "path", tracer.Path(), "error", err)
		}
		if err := tracer.Flush(); err != nil {
			return fmt.Errorf("failed to flush trace: %w", err)
		}
	}

	fmt.Printf("Strategy:    %s (%s objective)\n", cfg.Strategy, cfg.Objective)
	fmt.Printf("Target:      %s\n", outcome.Target)
	fmt.Printf("Evaluations: %d in %s\n", outcome.Result.Len(), outcome.Elapsed)
	if !outcome.Found {
		fmt.Println("No candidates evaluated.")
	} else {
		fmt.Printf("Best color:  %s\n", outcome.Best)
		fmt.Printf("Best score:  %.4f\n", outcome.BestScore)
	}

	if !persist {
		return nil
	}

	runStore, closeStore, err := store.Open(kind, dataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore()

	run := store.NewRun(runID, cfg, outcome.Result, outcome.Elapsed)
	if err := runStore.SaveRun(run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	fmt.Printf("Saved run:   %s\n", runID)
	if tracer != nil {
		fmt.Printf("Trace:       %s\n", tracer.Path())
	}
	return nil
}
