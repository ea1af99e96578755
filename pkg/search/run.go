package search

import (
	"fmt"
	"math"
	"time"

	"github.com/matzehuels/gridpath/pkg/graph"
)

// Outcome is the result of a single [Run.Step].
type Outcome int

const (
	// Continue means the run stopped at a checkpoint and has more work.
	Continue Outcome = iota
	// Found means the goal was selected as current; the path is available.
	Found
	// Exhausted means the open set ran empty without reaching the goal.
	Exhausted
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Checkpoint names the suspension point a run stopped at.
type Checkpoint int

const (
	// CheckpointNone is reported before the first step and after termination
	// steps, which do not stop at a checkpoint.
	CheckpointNone Checkpoint = iota
	// CheckpointCurrent follows selecting and marking the current node.
	CheckpointCurrent
	// CheckpointRelaxed follows relaxing every outgoing connection of current.
	CheckpointRelaxed
	// CheckpointClosed follows closing the current node.
	CheckpointClosed
)

// String returns the lowercase checkpoint name.
func (c Checkpoint) String() string {
	switch c {
	case CheckpointNone:
		return "none"
	case CheckpointCurrent:
		return "current"
	case CheckpointRelaxed:
		return "relaxed"
	case CheckpointClosed:
		return "closed"
	default:
		return fmt.Sprintf("checkpoint(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Checkpoint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Stats counts the work a run has done.
type Stats struct {
	// Steps is the number of Step calls that did work, terminal steps included.
	Steps int `json:"steps"`
	// Expanded is the number of times a node had its connections relaxed.
	Expanded int `json:"expanded"`
	// Reopened is the number of Closed -> Open transitions (A* only).
	Reopened int `json:"reopened"`
}

// phase is the next piece of work Step performs.
type phase int

const (
	phaseSelect phase = iota
	phaseExpand
	phaseClose
)

// policy is what distinguishes the solver variants: the priority of an open
// node and how a connection out of the current node is relaxed.
type policy interface {
	key(s *NodeState) float64
	relax(r *Run, from *NodeState, c graph.Connection)
}

// Run is one resumable search. Create runs with [Solver.Solve].
//
// A Run owns all of its state; it never mutates the graph. It is not safe for
// concurrent use.
type Run struct {
	graph     *graph.Graph
	start     graph.Node
	goal      graph.Node
	algorithm Algorithm
	policy    policy
	observer  Observer
	delay     time.Duration

	states map[graph.Node]*NodeState
	open   *openSet

	phase      phase
	current    graph.Node
	hasCurrent bool
	checkpoint Checkpoint
	outcome    Outcome
	path       []graph.Connection
	stats      Stats
}

func newRun(g *graph.Graph, start, goal graph.Node, alg Algorithm, p policy, o options) *Run {
	r := &Run{
		graph:     g,
		start:     start,
		goal:      goal,
		algorithm: alg,
		policy:    p,
		observer:  o.observer,
		delay:     o.stepDelay,
		states:    make(map[graph.Node]*NodeState, g.Len()),
		open:      newOpenSet(),
	}
	for _, n := range g.Nodes() {
		r.states[n] = newNodeState()
	}
	return r
}

// begin opens the start node. Callers set the start's costs first.
func (r *Run) begin() {
	if len(r.states) == 0 {
		r.outcome = Exhausted
		return
	}
	st := r.states[r.start]
	r.transition(r.start, st, Open)
	r.open.push(r.start, r.policy.key(st))
}

// Step advances the run to its next checkpoint and reports whether more work
// remains. Once the run has terminated, Step keeps returning the terminal
// outcome without doing anything.
func (r *Run) Step() Outcome {
	if r.outcome != Continue {
		return r.outcome
	}
	r.stats.Steps++

	switch r.phase {
	case phaseSelect:
		n, ok := r.open.min()
		if !ok {
			r.finish(Exhausted)
			return r.outcome
		}
		r.current, r.hasCurrent = n, true
		r.emit(Event{Kind: EventCurrent, Node: n, From: Open, To: Open})
		r.checkpoint = CheckpointCurrent
		r.phase = phaseExpand

	case phaseExpand:
		if r.current == r.goal {
			r.finish(Found)
			return r.outcome
		}
		r.stats.Expanded++
		cur := r.states[r.current]
		for _, c := range r.graph.Connections(r.current) {
			r.policy.relax(r, cur, c)
		}
		r.checkpoint = CheckpointRelaxed
		r.phase = phaseClose

	case phaseClose:
		r.transition(r.current, r.states[r.current], Closed)
		r.open.remove(r.current)
		r.checkpoint = CheckpointClosed
		r.phase = phaseSelect
	}
	return Continue
}

func (r *Run) finish(o Outcome) {
	r.outcome = o
	r.checkpoint = CheckpointNone
	if o != Found {
		return
	}
	r.path = reconstructPath(r.states, r.start, r.goal)
	r.emit(Event{Kind: EventPath, Node: r.goal})
	for i := len(r.path) - 1; i >= 0; i-- {
		r.emit(Event{Kind: EventPath, Node: r.path[i].From})
	}
}

// transition moves n to category to and notifies the observer.
func (r *Run) transition(n graph.Node, st *NodeState, to Category) {
	from := st.Category
	st.Category = to
	r.emit(Event{Kind: EventTransition, Node: n, From: from, To: to})
}

// discover records a new route to the target of c and opens it if needed.
func (r *Run) discover(c graph.Connection, st *NodeState, cost, estimate float64) {
	conn := c
	st.CostSoFar = cost
	st.EstimatedTotalCost = estimate
	st.Predecessor = &conn

	switch st.Category {
	case Open:
		r.open.update(c.To, r.policy.key(st))
	case Closed:
		r.stats.Reopened++
		fallthrough
	default:
		r.transition(c.To, st, Open)
		r.open.push(c.To, r.policy.key(st))
	}
}

func (r *Run) emit(e Event) {
	if r.observer == nil {
		return
	}
	e.Step = r.stats.Steps
	r.observer(e)
}

// Done reports whether the run has terminated.
func (r *Run) Done() bool { return r.outcome != Continue }

// Outcome returns Continue while the run is in progress and the terminal
// outcome afterwards.
func (r *Run) Outcome() Outcome { return r.outcome }

// Checkpoint returns the checkpoint the last step stopped at.
func (r *Run) Checkpoint() Checkpoint { return r.checkpoint }

// Current returns the node most recently selected for expansion.
func (r *Run) Current() (graph.Node, bool) { return r.current, r.hasCurrent }

// Start returns the start node.
func (r *Run) Start() graph.Node { return r.start }

// Goal returns the goal node.
func (r *Run) Goal() graph.Node { return r.goal }

// Algorithm returns the variant that created the run.
func (r *Run) Algorithm() Algorithm { return r.algorithm }

// Graph returns the graph being searched.
func (r *Run) Graph() *graph.Graph { return r.graph }

// StepDelay returns the pause the solver was configured with between
// checkpoints. It is only a hint for drivers.
func (r *Run) StepDelay() time.Duration { return r.delay }

// Stats returns the work counters.
func (r *Run) Stats() Stats { return r.stats }

// State returns a copy of the bookkeeping for n. Unknown nodes report false
// and an Unvisited state with infinite costs.
func (r *Run) State(n graph.Node) (NodeState, bool) {
	st, ok := r.states[n]
	if !ok {
		return *newNodeState(), false
	}
	return *st, true
}

// Category returns the category of n; unknown nodes are Unvisited.
func (r *Run) Category(n graph.Node) Category {
	if st, ok := r.states[n]; ok {
		return st.Category
	}
	return Unvisited
}

// OpenCount returns the size of the open set.
func (r *Run) OpenCount() int { return r.open.Len() }

// Path returns the connections from start to goal. It is empty until the run
// terminates with Found, when start equals goal, and when no path exists.
func (r *Run) Path() []graph.Connection {
	out := make([]graph.Connection, len(r.path))
	copy(out, r.path)
	return out
}

// Cost returns the total cost of the path: 0 for an empty path found with
// start == goal, +Inf when no path was found.
func (r *Run) Cost() float64 {
	if r.outcome != Found {
		return math.Inf(1)
	}
	return PathCost(r.path)
}

// Snapshot is a copy of the observable state of a run.
type Snapshot struct {
	Outcome    Outcome                 `json:"outcome"`
	Checkpoint Checkpoint              `json:"checkpoint"`
	Current    graph.Node              `json:"current,omitempty"`
	Categories map[graph.Node]Category `json:"categories"`
	Path       []graph.Connection      `json:"path"`
	Stats      Stats                   `json:"stats"`
}

// Snapshot copies the current categories, path and counters.
func (r *Run) Snapshot() Snapshot {
	cats := make(map[graph.Node]Category, len(r.states))
	for n, st := range r.states {
		cats[n] = st.Category
	}
	s := Snapshot{
		Outcome:    r.outcome,
		Checkpoint: r.checkpoint,
		Categories: cats,
		Path:       r.Path(),
		Stats:      r.stats,
	}
	if r.hasCurrent {
		s.Current = r.current
	}
	return s
}
