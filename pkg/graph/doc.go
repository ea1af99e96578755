// Package graph provides the weighted directed graph searched by gridpath's
// solvers, together with its JSON document format.
//
// # Core Types
//
//   - [Node]: an opaque, comparable vertex identity
//   - [Connection]: a directed edge with a non-negative cost
//   - [Graph]: adjacency lists keyed by node, in insertion order
//   - [Position], [Cell]: spatial and grid metadata attached to nodes
//
// A graph is built once and then treated as read-only by solvers. Search
// bookkeeping never lives on the graph: every solver run keeps its own state
// keyed by node identity, so any number of runs may read the same graph.
//
// # Connections
//
// At most one connection is stored per (From, To) pair. Adding an equal pair a
// second time is a no-op. The reverse direction is a different edge:
//
//	g := graph.New()
//	g.AddConnection(graph.Connection{From: "a", To: "b", Cost: 1})
//	g.AddConnection(graph.Connection{From: "a", To: "b", Cost: 7}) // ignored
//	g.AddConnection(graph.Connection{From: "b", To: "a", Cost: 1}) // distinct
//
// # Documents
//
// Graphs serialize to a node-link JSON format:
//
//	{
//	  "nodes": [{"id": "n[0,0]", "x": 0, "y": 0, "z": 0, "col": 0, "row": 0}],
//	  "connections": [{"from": "n[0,0]", "to": "n[1,0]", "cost": 1.4}]
//	}
//
// Use [FromGraph]/[Document.ToGraph] to convert, and [ReadFile]/[WriteFile]
// for disk I/O.
package graph
