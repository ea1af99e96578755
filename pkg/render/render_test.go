package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/search"
)

func sampleGraph() *graph.Graph {
	g := graph.New()
	g.SetPosition("a", graph.Position{X: 0, Z: 0})
	g.SetPosition("b", graph.Position{X: 1.5, Z: 0})
	g.SetPosition("c", graph.Position{X: 1.5, Z: 2})
	g.AddConnection(graph.Connection{From: "a", To: "b", Cost: 1.5})
	g.AddConnection(graph.Connection{From: "b", To: "a", Cost: 1.5})
	g.AddConnection(graph.Connection{From: "b", To: "c", Cost: 2})
	g.AddConnection(graph.Connection{From: "c", To: "b", Cost: 3})
	return g
}

func TestToDOTBareGraph(t *testing.T) {
	dot := ToDOT(sampleGraph(), nil, Options{Scale: 2, Costs: true})

	for _, want := range []string{
		"digraph G {",
		"layout=neato;",
		`"b" [pos="3,0!", fillcolor="white", label=""];`,
		`"c" [pos="3,4!", fillcolor="white", label=""];`,
		`"a" -> "b" [dir=both, label="1.5", fontsize=7];`,
		`"b" -> "c" [label="2", fontsize=7];`,
		`"c" -> "b" [label="3", fontsize=7];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"b" -> "a"`) {
		t.Error("two-way edge with equal cost should be drawn once")
	}
}

func TestToDOTSnapshotColors(t *testing.T) {
	g := sampleGraph()
	run, err := search.NewDijkstra().Solve(g, "a", "c")
	if err != nil {
		t.Fatal(err)
	}
	run.Step() // a selected
	snap := run.Snapshot()

	dot := ToDOT(g, &snap, Options{Labels: true})
	if !strings.Contains(dot, `"a" [pos="0,0!", fillcolor="gold", label="a"];`) {
		t.Errorf("current node not gold:\n%s", dot)
	}

	search.Complete(run)
	snap = run.Snapshot()
	dot = ToDOT(g, &snap, Options{})

	for _, want := range []string{
		`"a" [pos="0,0!", fillcolor="palegreen3"`,
		`"c" [pos="1.5,2!", fillcolor="palegreen3"`,
		`"a" -> "b" [dir=both, penwidth=3, color="forestgreen"];`,
		`"b" -> "c" [penwidth=3, color="forestgreen"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"c" -> "b" [penwidth=3`) {
		t.Error("reverse of a path edge should not be highlighted")
	}
}

func TestToDOTCategoryColors(t *testing.T) {
	g := graph.New()
	g.AddConnection(graph.Connection{From: "a", To: "b", Cost: 1})
	g.AddNode("z")
	snap := &search.Snapshot{
		Outcome:    search.Continue,
		Categories: map[graph.Node]search.Category{"a": search.Closed, "b": search.Open},
	}

	dot := ToDOT(g, snap, Options{})
	for _, want := range []string{
		`"a" [pos="0,0!", fillcolor="grey70"`,
		`"b" [pos="0,0!", fillcolor="lightblue"`,
		`"z" [pos="0,0!", fillcolor="white"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox = %s, want %s", out, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox without viewBox changed input: %s", got)
	}
}
