package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/kklipsch/mapbench/strategy"
	"github.com/kklipsch/mapbench/workload"
)

// maxIterations caps calibrated loop growth, matching go test.
const maxIterations = int64(1e9)

// Config holds iteration-control parameters for a single trial.
type Config struct {
	// Iterations fixes the measured loop count. Zero means calibrate
	// the count until one round fills BenchTime.
	Iterations int64
	BenchTime  time.Duration
	Warmup     int64
}

// Runner executes and measures strategy trials, strictly sequentially.
type Runner struct {
	Logger *slog.Logger
}

// NewRunner creates a Runner that logs trial progress through logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{Logger: logger}
}

// Run measures one strategy against an entry set. Every iteration
// builds a fresh container and verifies its contents; a verification
// failure aborts the trial. The context is consulted between
// measurement rounds, never inside the measured loop.
func (r *Runner) Run(
	ctx context.Context,
	st strategy.Strategy,
	entries []workload.Entry,
	cfg Config,
) (*Result, error) {
	if st.Build == nil {
		return nil, fmt.Errorf("strategy %q has no builder", st.Name)
	}

	logger := r.Logger.With(slog.String("strategy", st.Name))

	for i := int64(0); i < cfg.Warmup; i++ {
		if err := strategy.Verify(st.Build(), entries); err != nil {
			return nil, fmt.Errorf(
				"strategy %s warmup iteration %d: %w", st.Name, i, err,
			)
		}
	}

	logger.InfoContext(ctx, "starting trial",
		slog.Int("entries", len(entries)),
		slog.Int64("iterations", cfg.Iterations),
		slog.Duration("benchtime", cfg.BenchTime),
	)

	var (
		m   measurement
		err error
	)

	if cfg.Iterations > 0 {
		m, err = r.measure(ctx, st, entries, cfg.Iterations)
	} else {
		m, err = r.calibrate(ctx, st, entries, cfg.BenchTime)
	}

	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", st.Name, err)
	}

	final := st.Build()
	if err := strategy.Verify(final, entries); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", st.Name, err)
	}

	result := &Result{
		Strategy:        st.Name,
		Entries:         len(entries),
		Iterations:      m.n,
		ElapsedNs:       m.elapsed.Nanoseconds(),
		NsPerOp:         float64(m.elapsed.Nanoseconds()) / float64(m.n),
		AllocsPerOp:     float64(m.mallocs) / float64(m.n),
		BytesPerOp:      float64(m.bytes) / float64(m.n),
		TotalAllocBytes: m.bytes,
		Fingerprint:     strategy.Fingerprint(final),
	}

	logger.InfoContext(ctx, "trial finished",
		slog.Int64("iterations", result.Iterations),
		slog.Duration("elapsed", m.elapsed),
		slog.String("fingerprint", result.Fingerprint),
	)

	return result, nil
}

type measurement struct {
	n       int64
	elapsed time.Duration
	mallocs uint64
	bytes   uint64
}

// measure runs the strategy n times and derives allocation figures from
// runtime.MemStats snapshots bracketing the loop. Verification happens
// inside the loop so every strategy pays the same observation cost; it
// also keeps the built container live against dead-code elimination.
func (r *Runner) measure(
	ctx context.Context,
	st strategy.Strategy,
	entries []workload.Entry,
	n int64,
) (measurement, error) {
	if err := ctx.Err(); err != nil {
		return measurement{}, err
	}

	var before, after runtime.MemStats

	runtime.GC()
	runtime.ReadMemStats(&before)

	start := time.Now()

	for i := int64(0); i < n; i++ {
		if err := strategy.Verify(st.Build(), entries); err != nil {
			return measurement{}, fmt.Errorf("iteration %d: %w", i, err)
		}
	}

	elapsed := time.Since(start)

	runtime.ReadMemStats(&after)

	return measurement{
		n:       n,
		elapsed: elapsed,
		mallocs: after.Mallocs - before.Mallocs,
		bytes:   after.TotalAlloc - before.TotalAlloc,
	}, nil
}

// calibrate grows the iteration count the way go test does: predict the
// next count from the last round's ns/op, grow at most 100x, round up
// to a readable 1/2/3/5 x 10^k, and stop once a round fills benchtime.
// The last round alone is the reported measurement.
func (r *Runner) calibrate(
	ctx context.Context,
	st strategy.Strategy,
	entries []workload.Entry,
	benchtime time.Duration,
) (measurement, error) {
	if benchtime <= 0 {
		return measurement{}, fmt.Errorf(
			"benchtime %v: need fixed iterations or a positive duration",
			benchtime,
		)
	}

	n := int64(1)

	for {
		m, err := r.measure(ctx, st, entries, n)
		if err != nil {
			return measurement{}, err
		}

		if m.elapsed >= benchtime || n >= maxIterations {
			return m, nil
		}

		goalns := benchtime.Nanoseconds()
		prevns := m.elapsed.Nanoseconds()
		if prevns <= 0 {
			prevns = 1
		}

		next := goalns * m.n / prevns
		next += next / 5
		next = min(next, 100*n)
		next = max(next, n+1)
		n = min(roundUp(next), maxIterations)
	}
}

// roundDown10 rounds n down to the nearest power of 10.
func roundDown10(n int64) int64 {
	tens := 0
	for n >= 10 {
		n /= 10
		tens++
	}

	result := int64(1)
	for i := 0; i < tens; i++ {
		result *= 10
	}

	return result
}

// roundUp rounds n up to a number of the form [1eX, 2eX, 3eX, 5eX].
func roundUp(n int64) int64 {
	base := roundDown10(n)

	switch {
	case n <= base:
		return base
	case n <= 2*base:
		return 2 * base
	case n <= 3*base:
		return 3 * base
	case n <= 5*base:
		return 5 * base
	default:
		return 10 * base
	}
}
