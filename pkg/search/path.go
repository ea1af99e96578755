package search

import "github.com/matzehuels/gridpath/pkg/graph"

// reconstructPath follows predecessors back from goal and returns the
// connections in start-to-goal order. The walk is bounded by the number of
// states so a corrupted predecessor chain cannot loop forever.
func reconstructPath(states map[graph.Node]*NodeState, start, goal graph.Node) []graph.Connection {
	var rev []graph.Connection
	n := goal
	for n != start && len(rev) <= len(states) {
		st, ok := states[n]
		if !ok || st.Predecessor == nil {
			return nil
		}
		rev = append(rev, *st.Predecessor)
		n = st.Predecessor.From
	}
	if n != start {
		return nil
	}
	path := make([]graph.Connection, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

// PathCost sums the costs of path.
func PathCost(path []graph.Connection) float64 {
	var total float64
	for _, c := range path {
		total += c.Cost
	}
	return total
}

// PathNodes lists the nodes visited by path, start first. An empty path
// yields nil.
func PathNodes(path []graph.Connection) []graph.Node {
	if len(path) == 0 {
		return nil
	}
	nodes := make([]graph.Node, 0, len(path)+1)
	nodes = append(nodes, path[0].From)
	for _, c := range path {
		nodes = append(nodes, c.To)
	}
	return nodes
}
