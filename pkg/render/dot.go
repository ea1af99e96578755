package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/search"
)

// Options configures DOT generation.
type Options struct {
	// Scale converts position units to inches. Zero means 1.
	Scale float64
	// Labels prints node IDs inside the nodes.
	Labels bool
	// Costs prints connection costs on the edges.
	Costs bool
}

// Fill colours by node role.
const (
	ColorUnvisited = "white"
	ColorOpen      = "lightblue"
	ColorClosed    = "grey70"
	ColorCurrent   = "gold"
	ColorPath      = "palegreen3"
	colorPathEdge  = "forestgreen"
)

// ToDOT converts g to Graphviz DOT. snap may be nil to draw the bare graph.
func ToDOT(g *graph.Graph, snap *search.Snapshot, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	onPath := make(map[graph.Node]bool)
	pathEdges := make(map[[2]graph.Node]bool)
	if snap != nil {
		for _, c := range snap.Path {
			onPath[c.From], onPath[c.To] = true, true
			pathEdges[[2]graph.Node{c.From, c.To}] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fixedsize=true, width=0.3, fontsize=8];\n")
	buf.WriteString("  edge [arrowsize=0.5, color=grey40];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		p := g.Position(n)
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p.X*scale), fmtFloat(p.Z*scale)),
			fmt.Sprintf("fillcolor=%q", fillColor(n, snap, onPath)),
		}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("label=%q", string(n)))
		} else {
			attrs = append(attrs, "label=\"\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", string(n), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		for _, c := range g.Connections(n) {
			back, twoWay := g.Connection(c.To, c.From)
			merged := twoWay && back.Cost == c.Cost
			if merged && c.To < c.From {
				// Drawn with its reverse.
				continue
			}

			var attrs []string
			if merged {
				attrs = append(attrs, "dir=both")
			}
			if pathEdges[[2]graph.Node{c.From, c.To}] || (merged && pathEdges[[2]graph.Node{c.To, c.From}]) {
				attrs = append(attrs, "penwidth=3", fmt.Sprintf("color=%q", colorPathEdge))
			}
			if opts.Costs {
				attrs = append(attrs, fmt.Sprintf("label=%q", fmtFloat(c.Cost)), "fontsize=7")
			}

			if len(attrs) == 0 {
				fmt.Fprintf(&buf, "  %q -> %q;\n", string(c.From), string(c.To))
			} else {
				fmt.Fprintf(&buf, "  %q -> %q [%s];\n", string(c.From), string(c.To), strings.Join(attrs, ", "))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fillColor(n graph.Node, snap *search.Snapshot, onPath map[graph.Node]bool) string {
	if snap == nil {
		return ColorUnvisited
	}
	if onPath[n] {
		return ColorPath
	}
	if snap.Current == n && snap.Outcome == search.Continue {
		return ColorCurrent
	}
	switch snap.Categories[n] {
	case search.Open:
		return ColorOpen
	case search.Closed:
		return ColorClosed
	default:
		return ColorUnvisited
	}
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
