// Package bench measures map-population strategies in-process and
// reports per-iteration timing and allocation figures.
package bench

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"
)

// Result holds one measured trial of a single strategy. RunID ties the
// trial to the invocation that produced it.
type Result struct {
	RunID           string  `json:"run_id"`
	Strategy        string  `json:"strategy"`
	Entries         int     `json:"entries"`
	Iterations      int64   `json:"iterations"`
	ElapsedNs       int64   `json:"elapsed_ns"`
	NsPerOp         float64 `json:"ns_per_op"`
	AllocsPerOp     float64 `json:"allocs_per_op"`
	BytesPerOp      float64 `json:"bytes_per_op"`
	TotalAllocBytes uint64  `json:"total_alloc_bytes"`
	Fingerprint     string  `json:"fingerprint"`
}

// RunInfo identifies one harness invocation across report formats.
type RunInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	GoVersion string    `json:"go_version"`
	GOOS      string    `json:"goos"`
	GOARCH    string    `json:"goarch"`
	Entries   int       `json:"entries"`
}

// NewRunInfo stamps a fresh run with a ULID and the build's runtime.
func NewRunInfo(entries int) (RunInfo, error) {
	now := time.Now()

	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return RunInfo{}, fmt.Errorf("generate run id: %w", err)
	}

	return RunInfo{
		ID:        id.String(),
		StartedAt: now,
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		Entries:   entries,
	}, nil
}
