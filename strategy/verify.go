package strategy

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/kklipsch/mapbench/workload"
)

// MismatchError reports a container whose observed contents differ from
// the expected entry set. Diff carries a rendering of expected vs
// observed state for diagnosis.
type MismatchError struct {
	Cause string
	Diff  string
}

func (e *MismatchError) Error() string {
	if e.Diff == "" {
		return "container mismatch: " + e.Cause
	}

	return "container mismatch: " + e.Cause + "\n" + e.Diff
}

// Verify checks got against the entry set's expected contents. The
// per-entry checks are direct lookups cheap enough to run inside a
// measured loop; the first mismatch returns a *MismatchError with a full
// diff of the observed container state.
func Verify(got map[string]any, entries []workload.Entry) error {
	if len(got) != len(entries) {
		return mismatch(got, entries, fmt.Sprintf(
			"container holds %d keys, want %d", len(got), len(entries),
		))
	}

	for _, e := range entries {
		v, ok := got[e.Key]
		if !ok {
			return mismatch(got, entries, fmt.Sprintf("key %q missing", e.Key))
		}

		switch want := e.Value.(type) {
		case string:
			if s, ok := v.(string); !ok || s != want {
				return mismatch(got, entries, fmt.Sprintf(
					"key %q = %v (%T), want %q", e.Key, v, v, want,
				))
			}

		case int32:
			if n, ok := v.(int32); !ok || n != want {
				return mismatch(got, entries, fmt.Sprintf(
					"key %q = %v (%T), want int32(%d)", e.Key, v, v, want,
				))
			}

		case map[string]string:
			nested, ok := v.(map[string]any)
			if !ok {
				return mismatch(got, entries, fmt.Sprintf(
					"key %q = %v (%T), want nested container", e.Key, v, v,
				))
			}
			if len(nested) != len(want) {
				return mismatch(got, entries, fmt.Sprintf(
					"key %q nested container holds %d keys, want %d",
					e.Key, len(nested), len(want),
				))
			}
			for k, ws := range want {
				if gs, ok := nested[k].(string); !ok || gs != ws {
					return mismatch(got, entries, fmt.Sprintf(
						"key %q nested key %q = %v, want %q",
						e.Key, k, nested[k], ws,
					))
				}
			}

		default:
			return fmt.Errorf(
				"entry %q has unsupported value type %T", e.Key, e.Value,
			)
		}
	}

	return nil
}

func mismatch(got map[string]any, entries []workload.Entry, cause string) *MismatchError {
	return &MismatchError{
		Cause: cause,
		Diff:  cmp.Diff(workload.Expected(entries), got),
	}
}
