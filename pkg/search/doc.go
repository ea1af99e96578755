// Package search implements steppable shortest-path solvers over a
// [graph.Graph]: Dijkstra's algorithm and an A* variant.
//
// # Runs
//
// A [Solver] does not search on its own. [Solver.Solve] validates its input,
// initializes fresh per-node bookkeeping and returns a [Run]. The caller then
// advances the run with [Run.Step], one unit of work at a time:
//
//	solver, _ := search.New(search.Config{Algorithm: search.AlgorithmAStar})
//	run, err := solver.Solve(g, start, goal)
//	if err != nil {
//	    return err // unknown start/goal, negative costs
//	}
//	for run.Step() == search.Continue {
//	    // render run.Snapshot(), sleep, poll input...
//	}
//	path := run.Path() // empty when the goal is unreachable
//
// Each Continue step stops at exactly one checkpoint (see [Checkpoint]):
// after a node is selected as current, after its outgoing connections are
// relaxed, and after it is closed. [Drive] runs the loop for you, waiting a
// configurable delay between checkpoints and honouring context cancellation.
//
// # State
//
// All bookkeeping ([NodeState]) lives in a map owned by the run, keyed by node
// identity. Nothing is written to the graph, so any number of runs may share
// one graph, sequentially or from different goroutines. A single run is not
// safe for concurrent use.
//
// # Variants
//
// Dijkstra orders the open set by cost so far and never reconsiders a closed
// node. A* orders by estimated total cost (cost so far plus a heuristic) and
// reopens a closed node when a strictly cheaper route to it appears.
// Equal priorities are resolved in favour of the node that entered the open
// set first.
package search
