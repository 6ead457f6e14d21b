package strategy

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kklipsch/mapbench/workload"
)

func TestCanonicalStrategiesEquivalent(t *testing.T) {
	entries := workload.Canonical()
	want := workload.Expected(entries)

	var fingerprints []string

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			st, err := Canonical(name)
			if err != nil {
				t.Fatalf("Canonical(%q) failed: %v", name, err)
			}

			got := st.Build()

			if err := Verify(got, entries); err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("contents mismatch (-want +got):\n%s", diff)
			}

			fingerprints = append(fingerprints, Fingerprint(got))
		})
	}

	for i, fp := range fingerprints[1:] {
		if fp != fingerprints[0] {
			t.Errorf("fingerprint %d = %s, want %s", i+1, fp, fingerprints[0])
		}
	}
}

func TestLiteralContents(t *testing.T) {
	m := buildLiteral()

	if m["foo"] != "bar" {
		t.Errorf(`m["foo"] = %v, want "bar"`, m["foo"])
	}
	if m["moo"] != int32(7) {
		t.Errorf(`m["moo"] = %v (%T), want int32(7)`, m["moo"], m["moo"])
	}

	nested, ok := m["goo"].(map[string]any)
	if !ok {
		t.Fatalf(`m["goo"] = %v (%T), want nested container`, m["goo"], m["goo"])
	}
	if nested["boo"] != "baz" {
		t.Errorf(`nested["boo"] = %v, want "baz"`, nested["boo"])
	}
}

func TestSettersMatchDirectAssignment(t *testing.T) {
	direct := buildIncremental()
	viaSetters := buildWithSetters()

	if diff := cmp.Diff(direct, viaSetters); diff != "" {
		t.Errorf("setter-built container differs from direct (-direct +setters):\n%s", diff)
	}
}

func TestCanonicalUnknownStrategy(t *testing.T) {
	_, err := Canonical("bogus")
	if err == nil {
		t.Error("expected error for unknown strategy name")
	}
}

func TestSizedRejectsLiteral(t *testing.T) {
	entries, _ := workload.NewGenerator(workload.Config{Entries: 5, Seed: 1}).Generate()

	_, err := Sized(LiteralConstruct, entries)
	if err == nil {
		t.Fatal("expected error binding literal-construct to a generated entry set")
	}
	if !strings.Contains(err.Error(), "compile time") {
		t.Errorf("error %q does not explain the restriction", err)
	}
}

func TestSizedStrategiesEquivalent(t *testing.T) {
	entries, _ := workload.NewGenerator(workload.Config{
		Entries:    25,
		Seed:       42,
		NestedSize: 2,
	}).Generate()
	want := workload.Expected(entries)

	var fingerprints []string

	for _, name := range SizedNames() {
		t.Run(name, func(t *testing.T) {
			st, err := Sized(name, entries)
			if err != nil {
				t.Fatalf("Sized(%q) failed: %v", name, err)
			}

			got := st.Build()

			if err := Verify(got, entries); err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("contents mismatch (-want +got):\n%s", diff)
			}

			fingerprints = append(fingerprints, Fingerprint(got))
		})
	}

	for i, fp := range fingerprints[1:] {
		if fp != fingerprints[0] {
			t.Errorf("fingerprint %d = %s, want %s", i+1, fp, fingerprints[0])
		}
	}
}

func TestVerifyDetectsMismatches(t *testing.T) {
	entries := workload.Canonical()

	tests := []struct {
		name   string
		tamper func(m map[string]any)
	}{
		{
			name:   "missing key",
			tamper: func(m map[string]any) { delete(m, "foo") },
		},
		{
			name:   "extra key",
			tamper: func(m map[string]any) { m["zoo"] = "zap" },
		},
		{
			name:   "wrong string value",
			tamper: func(m map[string]any) { m["foo"] = "rab" },
		},
		{
			name:   "wrong integer value",
			tamper: func(m map[string]any) { m["moo"] = int32(8) },
		},
		{
			name:   "wrong integer width",
			tamper: func(m map[string]any) { m["moo"] = int64(7) },
		},
		{
			name:   "nested value replaced",
			tamper: func(m map[string]any) { m["goo"] = "baz" },
		},
		{
			name: "nested key wrong",
			tamper: func(m map[string]any) {
				m["goo"] = map[string]any{"boo": "zap"}
			},
		},
		{
			name: "nested extra pair",
			tamper: func(m map[string]any) {
				m["goo"] = map[string]any{"boo": "baz", "coo": "caz"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildLiteral()
			tt.tamper(m)

			err := Verify(m, entries)
			if err == nil {
				t.Fatal("Verify accepted a tampered container")
			}

			var mm *MismatchError
			if !errors.As(err, &mm) {
				t.Fatalf("error type = %T, want *MismatchError", err)
			}
			if mm.Diff == "" {
				t.Error("mismatch carries no diff of observed state")
			}
		})
	}
}

func TestVerifyAcceptsAllBuilders(t *testing.T) {
	entries := workload.Canonical()

	builders := map[string]func() map[string]any{
		"literal":     buildLiteral,
		"incremental": buildIncremental,
		"prealloc":    buildPrealloc,
		"setters":     buildWithSetters,
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			if err := Verify(build(), entries); err != nil {
				t.Errorf("Verify rejected %s-built container: %v", name, err)
			}
		})
	}
}

func TestFingerprintDistinguishesContents(t *testing.T) {
	base := Fingerprint(buildLiteral())

	tampered := buildLiteral()
	tampered["moo"] = int32(8)

	if got := Fingerprint(tampered); got == base {
		t.Error("fingerprint did not change with contents")
	}
}

func TestFingerprintSeparatesIntWidths(t *testing.T) {
	a := map[string]any{"n": int32(7)}
	b := map[string]any{"n": int64(7)}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("int32 and int64 values fingerprint identically")
	}
}

func TestFingerprintBoundaryShifts(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]any
	}{
		{
			name: "byte moved from key to value",
			a:    map[string]any{"ab": "c"},
			b:    map[string]any{"a": "bc"},
		},
		{
			name: "control bytes in key",
			a:    map[string]any{"a\x00s:x": "y"},
			b:    map[string]any{"a": "x\x00s:y"},
		},
		{
			name: "entry folded into nested container",
			a:    map[string]any{"a": map[string]any{}, "b": "x"},
			b:    map[string]any{"a": map[string]any{"b": "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if fa, fb := Fingerprint(tt.a), Fingerprint(tt.b); fa == fb {
				t.Errorf("distinct contents share fingerprint %s", fa)
			}
		})
	}
}

func TestNames(t *testing.T) {
	if got := len(Names()); got != 4 {
		t.Errorf("Names() returned %d strategies, want 4", got)
	}
	if got := CanonicalNames(); len(got) != 3 || got[0] != LiteralConstruct {
		t.Errorf("CanonicalNames() = %v", got)
	}

	for _, name := range SizedNames() {
		if name == LiteralConstruct {
			t.Error("SizedNames() includes literal-construct")
		}
	}
}
