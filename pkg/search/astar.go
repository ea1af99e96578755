package search

import (
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/heuristic"
)

// AStarSolver orders the open set by estimated total cost: cost so far plus a
// heuristic estimate of the remaining cost to the goal.
//
// Unlike [DijkstraSolver] it reopens a closed node when a strictly cheaper
// route to it is found, so an inconsistent heuristic still produces a path
// (though not necessarily an optimal one). The heuristic contribution of a
// node is computed once, when it is first discovered, and carried over on
// every later cost update.
type AStarSolver struct {
	heuristic heuristic.Type
	opts      options
}

// NewAStar returns an A* solver using heuristic t. It fails when t is not
// registered.
func NewAStar(t heuristic.Type, opts ...Option) (*AStarSolver, error) {
	o := buildOptions(opts)
	if _, err := o.registry.Lookup(t); err != nil {
		return nil, err
	}
	return &AStarSolver{heuristic: t, opts: o}, nil
}

// Algorithm returns AlgorithmAStar.
func (s *AStarSolver) Algorithm() Algorithm { return AlgorithmAStar }

// Heuristic returns the heuristic the solver estimates with.
func (s *AStarSolver) Heuristic() heuristic.Type { return s.heuristic }

// Solve starts a run from start towards goal. See [Solver].
func (s *AStarSolver) Solve(g *graph.Graph, start, goal graph.Node) (*Run, error) {
	h, err := s.opts.registry.Bind(s.heuristic, g)
	if err != nil {
		return nil, err
	}
	p := &astarPolicy{h: h, goal: goal}
	r, err := prepare(g, start, goal, AlgorithmAStar, p, s.opts)
	if err != nil {
		return nil, err
	}
	if st, ok := r.states[start]; ok {
		st.CostSoFar = 0
		st.EstimatedTotalCost = h(start, goal)
	}
	r.begin()
	return r, nil
}

type astarPolicy struct {
	h    heuristic.Func
	goal graph.Node
}

func (p *astarPolicy) key(s *NodeState) float64 { return s.EstimatedTotalCost }

func (p *astarPolicy) relax(r *Run, from *NodeState, c graph.Connection) {
	st := r.states[c.To]
	cost := from.CostSoFar + c.Cost

	var estimate float64
	switch st.Category {
	case Unvisited:
		estimate = cost + p.h(c.To, p.goal)
	default:
		if st.CostSoFar <= cost {
			return
		}
		estimate = cost + st.heuristicTerm()
	}
	r.discover(c, st, cost, estimate)
}
