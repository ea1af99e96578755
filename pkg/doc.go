// Package pkg holds the gridpath libraries.
//
// # Overview
//
// gridpath builds randomized grid graphs and searches them step by step with
// Dijkstra's algorithm or A*, so that every stage of a search can be shown.
// The pkg directory is organized as follows:
//
//  1. [graph] - Weighted directed graphs and their JSON document format
//  2. [heuristic] - Named distance estimators for A*
//  3. [search] - Steppable solvers, runs, path reconstruction and the driver
//  4. [grid] - Grid graph generation and nearest-node lookup
//  5. [render] - Graphviz output of graphs and search snapshots
//  6. Infrastructure: [config], [cache], [session], [observability], [errors], [buildinfo]
//
// # Architecture
//
//	grid.Generate / graph.ReadFile
//	         ↓
//	    search.Solver.Solve  → *search.Run
//	         ↓
//	    Run.Step (repeat; observe via Snapshot or an Observer)
//	         ↓
//	    Run.Path → render.ToDOT / JSON
//
// # Quick Start
//
//	g, _ := grid.Generate(grid.Config{Columns: 20, Rows: 20, MinGap: 1, MaxGap: 2, EdgeProbability: 0.6, Seed: 1})
//	start, goal := g.Corners()
//
//	solver, _ := search.New(search.Config{Algorithm: search.AlgorithmAStar, Heuristic: heuristic.Euclidean})
//	run, err := solver.Solve(g.Graph, start, goal)
//	if err != nil {
//	    return err
//	}
//	res := search.Complete(run)
//	fmt.Println(res.Outcome, res.Cost)
package pkg
