// Package report formats benchmark results into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kklipsch/mapbench/bench"
)

// Report is the full JSON output: run metadata plus every sample.
type Report struct {
	Run     bench.RunInfo  `json:"run"`
	Results []bench.Result `json:"results"`
}

// row is one strategy's aggregate across its samples.
type row struct {
	strategy     string
	entries      int
	samples      int
	iterations   int64
	nsPerOp      float64
	allocsPerOp  float64
	bytesPerOp   float64
	totalAlloc   uint64
	fingerprints []string
}

// Generate writes a markdown comparison table for the given results.
// Samples of the same strategy are aggregated into one line; per-op
// figures are arithmetic means over samples.
func Generate(w io.Writer, results []bench.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	rows := aggregate(results)
	fastest := findFastest(rows)

	// Header.
	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	// Contents-equivalence check.
	if FingerprintsMatch(results) {
		fmt.Fprintln(w, "Contents: **all match**")
	} else {
		fmt.Fprintln(w, "Contents: **MISMATCH**")

		for _, r := range rows {
			fmt.Fprintf(w, "  - %s: %s\n",
				r.strategy, strings.Join(r.fingerprints, ", "))
		}
	}

	fmt.Fprintln(w)

	// Table header.
	fmt.Fprintln(w, "| Strategy | Iterations | ns/op | allocs/op "+
		"| B/op | vs fastest |")
	fmt.Fprintln(w, "|----------|------------|-------|-----------"+
		"|------|------------|")

	for _, r := range rows {
		slowdown := 1.0
		if fastest > 0 && r.nsPerOp > 0 {
			slowdown = r.nsPerOp / fastest
		}

		fmt.Fprintf(w, "| %s | %s | %.1f | %.1f | %.1f | %.2fx |\n",
			r.strategy,
			humanize.Comma(r.iterations),
			r.nsPerOp,
			r.allocsPerOp,
			r.bytesPerOp,
			slowdown,
		)
	}

	fmt.Fprintln(w)

	// Detail rows.
	fmt.Fprintln(w, "| Strategy | Entries | Samples | Total Alloc |")
	fmt.Fprintln(w, "|----------|---------|---------|-------------|")

	for _, r := range rows {
		fmt.Fprintf(w, "| %s | %d | %d | %s |\n",
			r.strategy,
			r.entries,
			r.samples,
			formatBytes(r.totalAlloc),
		)
	}

	return nil
}

// GenerateJSON writes the full report, run metadata and every sample,
// as indented JSON to w.
func GenerateJSON(w io.Writer, run bench.RunInfo, results []bench.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Report{Run: run, Results: results})
}

// FingerprintsMatch reports whether every result observed
// content-identical containers.
func FingerprintsMatch(results []bench.Result) bool {
	if len(results) < 2 {
		return true
	}

	first := results[0].Fingerprint
	for _, r := range results[1:] {
		if r.Fingerprint != first {
			return false
		}
	}

	return true
}

// aggregate folds samples into one row per strategy, keeping first-seen
// order. Distinct fingerprints within a strategy are all retained.
func aggregate(results []bench.Result) []*row {
	var (
		rows  []*row
		index = make(map[string]*row)
	)

	for _, res := range results {
		r, ok := index[res.Strategy]
		if !ok {
			r = &row{strategy: res.Strategy, entries: res.Entries}
			index[res.Strategy] = r
			rows = append(rows, r)
		}

		r.samples++
		r.iterations += res.Iterations
		r.nsPerOp += res.NsPerOp
		r.allocsPerOp += res.AllocsPerOp
		r.bytesPerOp += res.BytesPerOp
		r.totalAlloc += res.TotalAllocBytes

		if !contains(r.fingerprints, res.Fingerprint) {
			r.fingerprints = append(r.fingerprints, res.Fingerprint)
		}
	}

	for _, r := range rows {
		n := float64(r.samples)
		r.nsPerOp /= n
		r.allocsPerOp /= n
		r.bytesPerOp /= n
	}

	return rows
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}

	return false
}

func findFastest(rows []*row) float64 {
	fastest := math.MaxFloat64
	for _, r := range rows {
		if r.nsPerOp > 0 && r.nsPerOp < fastest {
			fastest = r.nsPerOp
		}
	}

	if fastest == math.MaxFloat64 {
		return 0
	}

	return fastest
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	return humanize.IBytes(b)
}
