// Package main provides the CLI entry point for mapbench, a harness
// comparing strategies for populating small heterogeneous maps.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kklipsch/mapbench/bench"
	"github.com/kklipsch/mapbench/config"
	"github.com/kklipsch/mapbench/report"
	"github.com/kklipsch/mapbench/strategy"
	"github.com/kklipsch/mapbench/workload"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mapbench",
		Short: "Benchmark strategies for populating heterogeneous maps",
		Long: `Mapbench measures the cost of populating a small string-keyed map
holding mixed value types through several construction strategies, verifies
that every strategy produces identical contents, and reports per-iteration
timing and allocation figures side by side.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newStrategiesCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newRunCmd() *cobra.Command {
	var (
		strategies []string
		iterations int64
		benchTime  time.Duration
		warmup     int64
		samples    int
		entries    int
		seed       int64
		outputJSON bool
		cpuProfile string
		memProfile string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Measure map population strategies",
		Long: `Run every selected strategy against the same entry set, verifying the
built container each iteration, and print a comparison table or JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Explicit flags win over file and environment values.
			flags := cmd.Flags()
			if flags.Changed("iterations") {
				cfg.Bench.Iterations = iterations
			}
			if flags.Changed("benchtime") {
				cfg.Bench.BenchTime = benchTime
			}
			if flags.Changed("warmup") {
				cfg.Bench.Warmup = warmup
			}
			if flags.Changed("samples") {
				cfg.Bench.Samples = samples
			}
			if flags.Changed("entries") {
				cfg.Workload.Entries = entries
			}
			if flags.Changed("seed") {
				cfg.Workload.Seed = seed
			}

			return runBenchmark(cmd.Context(), newLogger(cfg.Log), runConfig{
				cfg:        cfg,
				strategies: strategies,
				outputJSON: outputJSON,
				cpuProfile: cpuProfile,
				memProfile: memProfile,
				out:        cmd.OutOrStdout(),
			})
		},
	}

	def := config.Default()

	flags := cmd.Flags()
	flags.StringSliceVar(&strategies, "strategies", nil,
		"Strategies to measure (default: all that fit the workload)")
	flags.Int64Var(&iterations, "iterations", def.Bench.Iterations,
		"Fixed iteration count per trial (0 = calibrate to --benchtime)")
	flags.DurationVar(&benchTime, "benchtime", def.Bench.BenchTime,
		"Target time per trial when calibrating")
	flags.Int64Var(&warmup, "warmup", def.Bench.Warmup,
		"Warmup iterations excluded from measurement")
	flags.IntVar(&samples, "samples", def.Bench.Samples,
		"Measured samples per strategy")
	flags.IntVar(&entries, "entries", def.Workload.Entries,
		"Generated entry count (0 = the fixed three-entry set)")
	flags.Int64Var(&seed, "seed", def.Workload.Seed,
		"Random seed for generated entries (0 = use current time)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of table")
	flags.StringVar(&cpuProfile, "cpuprofile", "",
		"Write a CPU profile to this file")
	flags.StringVar(&memProfile, "memprofile", "",
		"Write a heap profile to this file")
	flags.StringVar(&configPath, "config", "",
		"Path to a YAML config file")

	return cmd
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List registered strategy names",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range strategy.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(),
				"mapbench %s (commit %s, built %s)\n",
				version, commit, buildTime)
		},
	}
}

type runConfig struct {
	cfg        config.Config
	strategies []string
	outputJSON bool
	cpuProfile string
	memProfile string
	out        io.Writer
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	rc runConfig,
) error {
	if rc.cfg.Workload.Entries < 0 {
		return fmt.Errorf(
			"entry count must be zero or positive, got %d",
			rc.cfg.Workload.Entries,
		)
	}

	// Step 1: Resolve the entry set (fixed or generated).
	canonical := rc.cfg.Workload.Entries == 0

	var entries []workload.Entry

	if canonical {
		entries = workload.Canonical()
	} else {
		seed := rc.cfg.Workload.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		gen := workload.NewGenerator(workload.Config{
			Entries:    rc.cfg.Workload.Entries,
			Seed:       seed,
			NestedSize: rc.cfg.Workload.Nested,
		})

		var summary workload.Summary
		entries, summary = gen.Generate()

		logger.InfoContext(ctx, "workload generated",
			slog.Int("entries", summary.Entries),
			slog.Int("strings", summary.Strings),
			slog.Int("int32s", summary.Int32s),
			slog.Int("nested", summary.Nested),
			slog.Int64("seed", seed),
		)
	}

	// Step 2: Resolve strategies against the entry set.
	names := rc.strategies
	if len(names) == 0 {
		if canonical {
			names = strategy.CanonicalNames()
		} else {
			names = strategy.SizedNames()
		}
	}

	strategies := make([]strategy.Strategy, 0, len(names))

	for _, name := range names {
		var (
			st  strategy.Strategy
			err error
		)

		if canonical {
			st, err = strategy.Canonical(name)
		} else {
			st, err = strategy.Sized(name, entries)
		}

		if err != nil {
			return fmt.Errorf("resolve strategy: %w", err)
		}

		strategies = append(strategies, st)
	}

	// Step 3: Stamp the run.
	info, err := bench.NewRunInfo(len(entries))
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("run_id", info.ID),
		slog.Int("entries", len(entries)),
		slog.Any("strategies", names),
		slog.Int64("iterations", rc.cfg.Bench.Iterations),
		slog.Duration("benchtime", rc.cfg.Bench.BenchTime),
		slog.Int("samples", rc.cfg.Bench.Samples),
	)

	// Step 4: Start the CPU profile if requested.
	if rc.cpuProfile != "" {
		stopProfile, err := bench.StartCPUProfile(rc.cpuProfile)
		if err != nil {
			return err
		}

		defer stopProfile()
	}

	// Step 5: Run each trial sequentially.
	runner := bench.NewRunner(logger)
	benchCfg := bench.Config{
		Iterations: rc.cfg.Bench.Iterations,
		BenchTime:  rc.cfg.Bench.BenchTime,
		Warmup:     rc.cfg.Bench.Warmup,
	}

	samples := max(rc.cfg.Bench.Samples, 1)
	results := make([]bench.Result, 0, len(strategies)*samples)

	for _, st := range strategies {
		for s := 0; s < samples; s++ {
			result, runErr := runner.Run(ctx, st, entries, benchCfg)
			if runErr != nil {
				return fmt.Errorf("run %s: %w", st.Name, runErr)
			}

			result.RunID = info.ID
			results = append(results, *result)
		}
	}

	// Step 6: Dump the heap profile if requested.
	if rc.memProfile != "" {
		if err := bench.WriteHeapProfile(rc.memProfile); err != nil {
			return err
		}
	}

	// Step 7: Generate the report; disagreement on contents is an error
	// after the report has been printed.
	if rc.outputJSON {
		if err := report.GenerateJSON(rc.out, info, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(rc.out, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if !report.FingerprintsMatch(results) {
		return fmt.Errorf("strategies disagree on container contents")
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("run_id", info.ID),
	)

	return nil
}

func newLogger(cfg config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler

	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
