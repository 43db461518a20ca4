package model

import (
	"fmt"
	"sort"
	"strings"
)

// Params is a concrete assignment of tunable parameter values by name.
// The shape mirrors the hyper-parameter maps used across Go ML tooling:
// values are float64, and integer-valued parameters are rounded by the
// learner on use.
type Params map[string]float64

// Get returns the value of the named parameter, or dflt when absent.
func (p Params) Get(name string, dflt float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return dflt
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Key returns a canonical string form of the assignment, used for
// duplicate detection in grids and for candidate identifiers. The empty
// assignment yields the empty string.
func (p Params) Key() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p))
	for _, name := range p.Names() {
		parts = append(parts, fmt.Sprintf("%s=%g", name, p[name]))
	}
	return strings.Join(parts, ",")
}

// Clone returns a copy of the assignment.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ParamRange declares one tunable dimension of a learner: a closed
// interval of values, optionally restricted to integers.
type ParamRange struct {
	Name    string
	Min     float64
	Max     float64
	Integer bool
}
