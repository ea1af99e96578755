// Package render draws graphs and search progress with Graphviz.
//
// # Overview
//
// [ToDOT] produces Graphviz DOT source where every node is pinned at its
// (X, Z) position, so the picture matches the generated grid rather than a
// computed layout. When a search snapshot is supplied, nodes are filled by
// their category and the solved path is highlighted:
//
//	unvisited  white
//	open       light blue
//	closed     grey
//	current    gold
//	path       green, with bold green connections
//
// Two connections between the same pair of nodes with equal cost are drawn
// as one double-headed edge.
//
// # Usage
//
//	snap := run.Snapshot()
//	dot := render.ToDOT(g, &snap, render.Options{Labels: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process (compiled to WebAssembly), so no system Graphviz installation is
// needed. The DOT output declares layout=neato and can also be fed to the
// Graphviz command-line tools.
package render
