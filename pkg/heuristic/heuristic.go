// Package heuristic provides the named distance estimators used by A*.
//
// An estimator guesses the remaining cost between two node positions. A*
// returns optimal paths only when the bound estimator never overestimates
// the true remaining cost (admissible) and never decreases by more than an
// edge's cost along that edge (consistent).
//
// With the grid generator's rule (edge cost = Euclidean distance between the
// endpoints) Euclidean and Chebyshev are admissible and consistent, and Zero
// always is. Manhattan only holds on axis-aligned layouts whose edges run
// along the axes.
package heuristic

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// Type selects an estimator.
type Type int

const (
	Euclidean Type = iota
	Manhattan
	Chebyshev
	Zero
)

var typeNames = map[Type]string{
	Euclidean: "euclidean",
	Manhattan: "manhattan",
	Chebyshev: "chebyshev",
	Zero:      "zero",
}

// String returns the lowercase name of t.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("heuristic(%d)", int(t))
}

// ParseType resolves a heuristic name case-insensitively. The empty string
// selects Euclidean.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Euclidean, nil
	}
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidHeuristic,
		"unknown heuristic %q (want one of %s)", s, strings.Join(Names(), ", "))
}

// Names lists the built-in heuristic names in declaration order.
func Names() []string {
	return []string{"euclidean", "manhattan", "chebyshev", "zero"}
}

// Estimator returns a non-negative distance estimate between two positions.
type Estimator func(a, b graph.Position) float64

// Func estimates the remaining cost between two nodes. It is what an A*
// solver holds after binding an estimator to a graph's positions.
type Func func(from, to graph.Node) float64

// Positions is anything that can report node positions; *graph.Graph does.
type Positions interface {
	Position(n graph.Node) graph.Position
}

// Registry maps heuristic types to estimators.
type Registry map[Type]Estimator

// Default returns a registry holding the built-in estimators.
func Default() Registry {
	return Registry{
		Euclidean: euclidean,
		Manhattan: manhattan,
		Chebyshev: chebyshev,
		Zero:      zero,
	}
}

// Register adds or replaces the estimator for t.
func (r Registry) Register(t Type, e Estimator) {
	r[t] = e
}

// Lookup returns the estimator registered for t.
func (r Registry) Lookup(t Type) (Estimator, error) {
	e, ok := r[t]
	if !ok || e == nil {
		return nil, errors.New(errors.ErrCodeInvalidHeuristic, "heuristic %s is not registered", t)
	}
	return e, nil
}

// Bind resolves t and ties it to the positions of p.
func (r Registry) Bind(t Type, p Positions) (Func, error) {
	e, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}
	return func(from, to graph.Node) float64 {
		return e(p.Position(from), p.Position(to))
	}, nil
}

// Bind resolves t in the default registry and ties it to p.
func Bind(t Type, p Positions) (Func, error) {
	return Default().Bind(t, p)
}

func euclidean(a, b graph.Position) float64 {
	return a.Distance(b)
}

func manhattan(a, b graph.Position) float64 {
	d := a.Sub(b)
	return math.Abs(d.X) + math.Abs(d.Y) + math.Abs(d.Z)
}

func chebyshev(a, b graph.Position) float64 {
	d := a.Sub(b)
	return math.Max(math.Abs(d.X), math.Max(math.Abs(d.Y), math.Abs(d.Z)))
}

func zero(graph.Position, graph.Position) float64 { return 0 }
