// Package workload defines the entry sets that mapbench populates
// containers with: the fixed canonical set, and deterministic generated
// sets for scaling runs.
package workload

import (
	"encoding/hex"
	"fmt"
	mrand "math/rand"
)

// Entry is a single key/value pair destined for the benchmark container.
// Value holds one of three types: string, int32, or map[string]string
// (the source data for a nested container).
type Entry struct {
	Key   string
	Value any
}

// Canonical returns the fixed benchmark entry set: a string value, a
// 32-bit integer value, and a nested container value.
func Canonical() []Entry {
	return []Entry{
		{Key: "foo", Value: "bar"},
		{Key: "moo", Value: int32(7)},
		{Key: "goo", Value: map[string]string{"boo": "baz"}},
	}
}

// Expected materializes the container contents a correct strategy must
// produce for the given entry set. Nested values become string-keyed
// containers of their own.
func Expected(entries []Entry) map[string]any {
	m := make(map[string]any, len(entries))

	for _, e := range entries {
		switch v := e.Value.(type) {
		case map[string]string:
			n := make(map[string]any, len(v))
			for k, s := range v {
				n[k] = s
			}

			m[e.Key] = n
		default:
			m[e.Key] = v
		}
	}

	return m
}

// Summary contains statistics about a generated entry set.
type Summary struct {
	Entries int
	Strings int
	Int32s  int
	Nested  int
}

// Config controls entry set generation parameters.
type Config struct {
	Entries    int
	Seed       int64
	NestedSize int // pairs per nested container; 0 means 1
}

// Generator produces deterministic entry sets from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate returns an entry set of cfg.Entries entries with value kinds
// drawn from the seeded source, and a Summary of the kind mix. Identical
// configs produce identical entry sets. Keys are unique by construction.
// A non-positive count yields an empty set.
func (g *Generator) Generate() ([]Entry, Summary) {
	entries := make([]Entry, 0, max(g.cfg.Entries, 0))

	var summary Summary

	for i := 0; i < g.cfg.Entries; i++ {
		key := fmt.Sprintf("k%06d-%s", i, g.randomHex(4))

		var value any

		switch g.rng.Intn(3) {
		case 0:
			value = g.randomHex(8)
			summary.Strings++
		case 1:
			value = g.rng.Int31()
			summary.Int32s++
		default:
			value = g.randomNested()
			summary.Nested++
		}

		entries = append(entries, Entry{Key: key, Value: value})
		summary.Entries++
	}

	return entries, summary
}

func (g *Generator) randomNested() map[string]string {
	size := max(g.cfg.NestedSize, 1)
	n := make(map[string]string, size)

	for i := 0; i < size; i++ {
		n[fmt.Sprintf("n%d", i)] = g.randomHex(4)
	}

	return n
}

func (g *Generator) randomHex(size int) string {
	buf := make([]byte, size)
	g.rng.Read(buf)

	return hex.EncodeToString(buf)
}
