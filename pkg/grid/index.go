package grid

import (
	"github.com/dhconnelly/rtreego"

	"github.com/matzehuels/gridpath/pkg/graph"
)

// pointTolerance is the side length of the box each node occupies in the tree.
const pointTolerance = 1e-9

// nodeEntry wraps a node for R-tree storage.
type nodeEntry struct {
	node graph.Node
	box  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.box
}

// Index answers nearest-node queries over node positions.
type Index struct {
	tree *rtreego.Rtree
}

// NewIndex indexes the positions of every node of g.
func NewIndex(g *graph.Graph) *Index {
	tree := rtreego.NewTree(3, 25, 50)
	for _, n := range g.Nodes() {
		p := g.Position(n)
		tree.Insert(&nodeEntry{node: n, box: point(p).ToRect(pointTolerance)})
	}
	return &Index{tree: tree}
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int { return ix.tree.Size() }

// Nearest returns the node closest to p. It reports false for an empty index.
func (ix *Index) Nearest(p graph.Position) (graph.Node, bool) {
	if ix.tree.Size() == 0 {
		return "", false
	}
	found := ix.tree.NearestNeighbor(point(p))
	if found == nil {
		return "", false
	}
	return found.(*nodeEntry).node, true
}

// Within returns the nodes whose positions lie inside the axis-aligned box
// spanned by lo and hi, in no particular order.
func (ix *Index) Within(lo, hi graph.Position) []graph.Node {
	corner := point(lo)
	lengths := []float64{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z}
	for i := range lengths {
		if lengths[i] < 0 {
			return nil
		}
		corner[i] -= pointTolerance
		lengths[i] += 2 * pointTolerance
	}
	box, err := rtreego.NewRect(corner, lengths)
	if err != nil {
		return nil
	}
	results := ix.tree.SearchIntersect(box)
	nodes := make([]graph.Node, 0, len(results))
	for _, item := range results {
		nodes = append(nodes, item.(*nodeEntry).node)
	}
	return nodes
}

func point(p graph.Position) rtreego.Point {
	return rtreego.Point{p.X, p.Y, p.Z}
}
