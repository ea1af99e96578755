package graph

import (
	"errors"
	"fmt"
	"math"
)

// ErrNegativeCost is returned by [Graph.Validate] when a connection has a
// negative or non-finite cost. Shortest-path searches are only defined for
// finite, non-negative costs.
var ErrNegativeCost = errors.New("connection cost must be finite and non-negative")

// Node identifies a vertex. Identities are created by whoever builds the
// graph (the grid generator, a JSON document, a test).
type Node string

// Position is the spatial location of a node. Heuristics, renderers and the
// spatial index read it; solvers never do.
type Position struct {
	X, Y, Z float64
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Distance returns the Euclidean distance between p and q.
func (p Position) Distance(q Position) float64 {
	d := p.Sub(q)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Cell is the column/row a node occupies when the graph was generated from a
// grid. Grid-based views use it; graphs loaded from elsewhere may not have it.
type Cell struct {
	Col, Row int
}

// Connection is a directed, weighted edge.
type Connection struct {
	From Node
	To   Node
	Cost float64
}

// String formats the connection as "from->to (cost)".
func (c Connection) String() string {
	return fmt.Sprintf("%s->%s (%.3g)", c.From, c.To, c.Cost)
}

// Opposite reports whether o runs between the same nodes as c in the reverse
// direction.
func (c Connection) Opposite(o Connection) bool {
	return c.From == o.To && c.To == o.From
}

// Graph maps every known node to its outgoing connections.
//
// The zero value is not usable - use [New]. Graph is not safe for concurrent
// mutation; concurrent reads are fine once construction is finished.
type Graph struct {
	order     []Node
	adjacency map[Node][]Connection
	positions map[Node]Position
	cells     map[Node]Cell
	edges     int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[Node][]Connection),
		positions: make(map[Node]Position),
		cells:     make(map[Node]Cell),
	}
}

// AddNode registers n with an empty connection list. Adding a known node is a
// no-op.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.adjacency[n]; ok {
		return
	}
	g.adjacency[n] = nil
	g.order = append(g.order, n)
}

// AddConnection adds both endpoints as nodes and appends c to the outgoing
// list of c.From, unless a connection with the same endpoints already exists.
func (g *Graph) AddConnection(c Connection) {
	g.AddNode(c.From)
	g.AddNode(c.To)
	if g.HasConnection(c.From, c.To) {
		return
	}
	g.adjacency[c.From] = append(g.adjacency[c.From], c)
	g.edges++
}

// HasConnection reports whether a connection from -> to is stored.
func (g *Graph) HasConnection(from, to Node) bool {
	for _, c := range g.adjacency[from] {
		if c.To == to {
			return true
		}
	}
	return false
}

// Connection returns the stored connection from -> to.
func (g *Graph) Connection(from, to Node) (Connection, bool) {
	for _, c := range g.adjacency[from] {
		if c.To == to {
			return c, true
		}
	}
	return Connection{}, false
}

// Connections returns the outgoing connections of n in insertion order.
// Unknown nodes have no connections; the result is nil, not an error.
// The returned slice must not be modified.
func (g *Graph) Connections(n Node) []Connection {
	return g.adjacency[n]
}

// Nodes returns every known node in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	copy(out, g.order)
	return out
}

// HasNode reports whether n is part of the graph.
func (g *Graph) HasNode(n Node) bool {
	_, ok := g.adjacency[n]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// ConnectionCount returns the number of stored connections.
func (g *Graph) ConnectionCount() int { return g.edges }

// SetPosition records the spatial position of n, adding n if needed.
func (g *Graph) SetPosition(n Node, p Position) {
	g.AddNode(n)
	g.positions[n] = p
}

// Position returns the position of n, or the origin when none was set.
func (g *Graph) Position(n Node) Position {
	return g.positions[n]
}

// SetCell records the grid cell of n, adding n if needed.
func (g *Graph) SetCell(n Node, c Cell) {
	g.AddNode(n)
	g.cells[n] = c
}

// Cell returns the grid cell of n, if one was recorded.
func (g *Graph) Cell(n Node) (Cell, bool) {
	c, ok := g.cells[n]
	return c, ok
}

// Validate checks that every connection has a finite, non-negative cost.
func (g *Graph) Validate() error {
	for _, n := range g.order {
		for _, c := range g.adjacency[n] {
			if c.Cost < 0 || math.IsNaN(c.Cost) || math.IsInf(c.Cost, 0) {
				return fmt.Errorf("%w: %s", ErrNegativeCost, c)
			}
		}
	}
	return nil
}
