// Package grid builds randomized grid graphs and answers nearest-node
// queries over node positions.
//
// # Generation
//
// [Generate] lays out Columns x Rows nodes on the X/Z plane. Node (i, j) sits
// at X = i*gx, Z = j*gz, where gx and gz are drawn uniformly from
// [MinGap, MaxGap] for every node, so rows and columns are slightly jagged.
// For every cell, each of its four neighbours (left, down, up, right) gets a
// directed connection with probability EdgeProbability. The cost of a
// connection is the Euclidean distance between its endpoints, which keeps the
// Euclidean and Chebyshev heuristics admissible.
//
// Generation is deterministic for a fixed non-zero Seed:
//
//	g, err := grid.Generate(grid.Config{Columns: 20, Rows: 20, EdgeProbability: 0.6, Seed: 42})
//	start, goal := g.Corners()
//
// # Picking
//
// [Index] stores node positions in an R-tree so callers can resolve a
// coordinate (a click, a CLI flag) to the closest node.
package grid
