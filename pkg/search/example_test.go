package search_test

import (
	"fmt"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/heuristic"
	"github.com/matzehuels/gridpath/pkg/search"
)

func ExampleRun_Step() {
	g := graph.New()
	g.AddConnection(graph.Connection{From: "a", To: "b", Cost: 1})
	g.AddConnection(graph.Connection{From: "b", To: "c", Cost: 2})
	g.AddConnection(graph.Connection{From: "a", To: "c", Cost: 4})

	solver, _ := search.New(search.Config{Algorithm: search.AlgorithmAStar, Heuristic: heuristic.Zero})
	run, err := solver.Solve(g, "a", "c")
	if err != nil {
		fmt.Println(err)
		return
	}
	for run.Step() == search.Continue {
	}
	fmt.Println(run.Outcome(), search.PathNodes(run.Path()), run.Cost())
	// Output: found [a b c] 3
}
