// Package strategy implements the container-population strategies under
// measurement: the canonical trio over the fixed workload plus the sized
// variants available to generated entry sets.
package strategy

import (
	"fmt"

	"github.com/kklipsch/mapbench/workload"
)

// Strategy names. These appear verbatim in reports and JSON output.
// PreallocSet is the single-expression analogue for entry sets only known
// at run time, where a composite literal cannot exist.
const (
	LiteralConstruct       = "literal-construct"
	IncrementalSet         = "incremental-set"
	IncrementalSetWrappers = "incremental-set-via-wrapper-functions"
	PreallocSet            = "prealloc-set"
)

// Strategy is a named way of building the benchmark container. Build
// returns a freshly populated container on every call.
type Strategy struct {
	Name  string
	Build func() map[string]any
}

// Names returns every registered strategy name in display order.
func Names() []string {
	return []string{
		LiteralConstruct,
		IncrementalSet,
		IncrementalSetWrappers,
		PreallocSet,
	}
}

// CanonicalNames returns the default strategy set for the fixed
// workload.
func CanonicalNames() []string {
	return []string{LiteralConstruct, IncrementalSet, IncrementalSetWrappers}
}

// SizedNames returns the default strategy set for generated entry sets.
func SizedNames() []string {
	return []string{PreallocSet, IncrementalSet, IncrementalSetWrappers}
}

// Canonical returns the named strategy over the fixed workload.
func Canonical(name string) (Strategy, error) {
	switch name {
	case LiteralConstruct:
		return Strategy{Name: name, Build: buildLiteral}, nil
	case IncrementalSet:
		return Strategy{Name: name, Build: buildIncremental}, nil
	case IncrementalSetWrappers:
		return Strategy{Name: name, Build: buildWithSetters}, nil
	case PreallocSet:
		return Strategy{Name: name, Build: buildPrealloc}, nil
	default:
		return Strategy{}, fmt.Errorf("unknown strategy %q", name)
	}
}

// Sized returns the named strategy bound to a generated entry set.
func Sized(name string, entries []workload.Entry) (Strategy, error) {
	switch name {
	case LiteralConstruct:
		return Strategy{}, fmt.Errorf(
			"strategy %q requires the fixed workload: composite literals are fixed at compile time",
			name,
		)
	case IncrementalSet:
		return Strategy{
			Name:  name,
			Build: func() map[string]any { return sizedIncremental(entries) },
		}, nil
	case IncrementalSetWrappers:
		return Strategy{
			Name:  name,
			Build: func() map[string]any { return sizedWithSetters(entries) },
		}, nil
	case PreallocSet:
		return Strategy{
			Name:  name,
			Build: func() map[string]any { return sizedPrealloc(entries) },
		}, nil
	default:
		return Strategy{}, fmt.Errorf("unknown strategy %q", name)
	}
}
