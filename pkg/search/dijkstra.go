package search

import "github.com/matzehuels/gridpath/pkg/graph"

// DijkstraSolver orders the open set by cost so far. A closed node is final:
// it is never reopened, so costs must be non-negative.
type DijkstraSolver struct {
	opts options
}

// NewDijkstra returns a Dijkstra solver.
func NewDijkstra(opts ...Option) *DijkstraSolver {
	return &DijkstraSolver{opts: buildOptions(opts)}
}

// Algorithm returns AlgorithmDijkstra.
func (s *DijkstraSolver) Algorithm() Algorithm { return AlgorithmDijkstra }

// Solve starts a run from start towards goal. See [Solver].
func (s *DijkstraSolver) Solve(g *graph.Graph, start, goal graph.Node) (*Run, error) {
	r, err := prepare(g, start, goal, AlgorithmDijkstra, dijkstraPolicy{}, s.opts)
	if err != nil {
		return nil, err
	}
	if st, ok := r.states[start]; ok {
		st.CostSoFar = 0
	}
	r.begin()
	return r, nil
}

type dijkstraPolicy struct{}

func (dijkstraPolicy) key(s *NodeState) float64 { return s.CostSoFar }

func (dijkstraPolicy) relax(r *Run, from *NodeState, c graph.Connection) {
	st := r.states[c.To]
	if st.Category == Closed {
		return
	}
	cost := from.CostSoFar + c.Cost
	if st.Category == Open && st.CostSoFar <= cost {
		return
	}
	r.discover(c, st, cost, st.EstimatedTotalCost)
}
