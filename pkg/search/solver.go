package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/heuristic"
)

// Solver is the contract shared by every search variant.
//
// Solve validates its input, initializes fresh bookkeeping for every node of g
// and opens start. It does no search work; advance the returned run with
// [Run.Step] or [Drive]. A solver holds no per-run state and may start any
// number of runs, including concurrently.
type Solver interface {
	Algorithm() Algorithm
	Solve(g *graph.Graph, start, goal graph.Node) (*Run, error)
}

// Algorithm names a solver variant.
type Algorithm int

const (
	AlgorithmDijkstra Algorithm = iota
	AlgorithmAStar
)

// String returns the lowercase algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmDijkstra:
		return "dijkstra"
	case AlgorithmAStar:
		return "astar"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAlgorithm resolves an algorithm name case-insensitively. "a*" and
// "a-star" are accepted for A*; the empty string selects A*.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "astar", "a*", "a-star":
		return AlgorithmAStar, nil
	case "dijkstra":
		return AlgorithmDijkstra, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidAlgorithm,
			"unknown algorithm %q (want dijkstra or astar)", s)
	}
}

// Config selects and configures a solver.
type Config struct {
	Algorithm Algorithm
	// Heuristic is only used by A*.
	Heuristic heuristic.Type
	// StepDelay is handed to every run as a pacing hint for drivers.
	StepDelay time.Duration
}

// Option customizes a solver.
type Option func(*options)

type options struct {
	observer  Observer
	stepDelay time.Duration
	registry  heuristic.Registry
}

// WithObserver installs a callback that receives every category change,
// current-node selection and path node of each run.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithStepDelay sets the pause drivers wait between checkpoints.
func WithStepDelay(d time.Duration) Option {
	return func(opts *options) { opts.stepDelay = d }
}

// WithRegistry replaces the heuristic registry A* resolves its heuristic in.
func WithRegistry(r heuristic.Registry) Option {
	return func(opts *options) { opts.registry = r }
}

func buildOptions(opts []Option) options {
	o := options{registry: heuristic.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.stepDelay < 0 {
		o.stepDelay = 0
	}
	return o
}

// New returns the solver described by cfg. Options override cfg.StepDelay.
func New(cfg Config, opts ...Option) (Solver, error) {
	opts = append([]Option{WithStepDelay(cfg.StepDelay)}, opts...)
	switch cfg.Algorithm {
	case AlgorithmDijkstra:
		return NewDijkstra(opts...), nil
	case AlgorithmAStar:
		return NewAStar(cfg.Heuristic, opts...)
	default:
		return nil, errors.New(errors.ErrCodeInvalidAlgorithm, "unknown algorithm %s", cfg.Algorithm)
	}
}

// prepare validates the inputs shared by all variants and returns a run with
// fresh state. A graph without nodes yields a run that is already Exhausted.
func prepare(g *graph.Graph, start, goal graph.Node, alg Algorithm, p policy, o options) (*Run, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "graph is nil")
	}
	if g.Len() > 0 {
		if !g.HasNode(start) {
			return nil, errors.New(errors.ErrCodeInvalidNode, "start node %q is not in the graph", start)
		}
		if !g.HasNode(goal) {
			return nil, errors.New(errors.ErrCodeInvalidNode, "goal node %q is not in the graph", goal)
		}
		if err := g.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "cannot search graph")
		}
	}
	return newRun(g, start, goal, alg, p, o), nil
}
