package search

import (
	"context"
	"time"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/observability"
)

// Result summarizes a terminated (or interrupted) run.
type Result struct {
	Algorithm Algorithm          `json:"algorithm"`
	Start     graph.Node         `json:"start"`
	Goal      graph.Node         `json:"goal"`
	Outcome   Outcome            `json:"outcome"`
	Found     bool               `json:"found"`
	Path      []graph.Connection `json:"path"`
	Cost      float64            `json:"cost"`
	Stats     Stats              `json:"stats"`
}

// Nodes lists the nodes of the result path, start first.
func (r Result) Nodes() []graph.Node {
	if r.Found && len(r.Path) == 0 {
		return []graph.Node{r.Start}
	}
	return PathNodes(r.Path)
}

// ResultOf summarizes run in its current state. Cost is 0 unless the run
// found a path.
func ResultOf(run *Run) Result {
	res := Result{
		Algorithm: run.Algorithm(),
		Start:     run.Start(),
		Goal:      run.Goal(),
		Outcome:   run.Outcome(),
		Found:     run.Outcome() == Found,
		Path:      run.Path(),
		Stats:     run.Stats(),
	}
	if res.Found {
		res.Cost = PathCost(res.Path)
	}
	return res
}

// Complete steps run to termination without pausing.
func Complete(run *Run) Result {
	for run.Step() == Continue {
	}
	return ResultOf(run)
}

// Drive steps run to termination, waiting run.StepDelay() after every
// checkpoint. It returns early with ctx.Err() when ctx is canceled; the
// partial result still reflects the work done so far and the run can be
// resumed by calling Drive again.
func Drive(ctx context.Context, run *Run) (Result, error) {
	alg := run.Algorithm().String()
	hooks := observability.Search()
	hooks.OnSolveStart(ctx, alg, run.Graph().Len())
	began := time.Now()

	err := drive(ctx, run)

	res := ResultOf(run)
	outcome := res.Outcome.String()
	if err != nil {
		outcome = "canceled"
	}
	hooks.OnSolveComplete(ctx, alg, outcome, observability.SolveStats{
		Steps:    res.Stats.Steps,
		Expanded: res.Stats.Expanded,
		Reopened: res.Stats.Reopened,
	}, time.Since(began), err)
	return res, err
}

func drive(ctx context.Context, run *Run) error {
	delay := run.StepDelay()
	var timer *time.Timer
	if delay > 0 {
		timer = time.NewTimer(delay)
		defer timer.Stop()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if run.Step() != Continue {
			return nil
		}
		if timer == nil {
			continue
		}
		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
