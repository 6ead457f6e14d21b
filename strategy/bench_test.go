package strategy

import (
	"fmt"
	"testing"

	"github.com/kklipsch/mapbench/workload"
)

// The canonical benchmarks mirror the CLI harness: build the three-entry
// container, then verify it inside the measured loop so every strategy
// pays the same observation cost.

func benchmarkCanonical(b *testing.B, name string) {
	st, err := Canonical(name)
	if err != nil {
		b.Fatalf("Canonical(%q) failed: %v", name, err)
	}

	entries := workload.Canonical()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m := st.Build()
		if err := Verify(m, entries); err != nil {
			b.Fatalf("iteration %d: %v", i, err)
		}
	}
}

func BenchmarkLiteralConstruct(b *testing.B) {
	benchmarkCanonical(b, LiteralConstruct)
}

func BenchmarkIncrementalSet(b *testing.B) {
	benchmarkCanonical(b, IncrementalSet)
}

func BenchmarkIncrementalSetViaWrapperFunctions(b *testing.B) {
	benchmarkCanonical(b, IncrementalSetWrappers)
}

func BenchmarkPreallocSet(b *testing.B) {
	benchmarkCanonical(b, PreallocSet)
}

func BenchmarkSizedStrategies(b *testing.B) {
	for _, entries := range []int{8, 64, 512} {
		set, _ := workload.NewGenerator(workload.Config{
			Entries: entries,
			Seed:    1,
		}).Generate()

		for _, name := range SizedNames() {
			b.Run(fmt.Sprintf("%s/entries=%d", name, entries), func(b *testing.B) {
				st, err := Sized(name, set)
				if err != nil {
					b.Fatalf("Sized(%q) failed: %v", name, err)
				}

				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					m := st.Build()
					if err := Verify(m, set); err != nil {
						b.Fatalf("iteration %d: %v", i, err)
					}
				}
			})
		}
	}
}
