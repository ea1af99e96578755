package search

import (
	"fmt"
	"math"

	"github.com/matzehuels/gridpath/pkg/graph"
)

// Category is the frontier state of a node during a run.
type Category int

const (
	Unvisited Category = iota
	Open
	Closed
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Unvisited:
		return "unvisited"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// NodeState is the per-node bookkeeping of one run.
// EstimatedTotalCost is only maintained by A*.
type NodeState struct {
	Category           Category
	CostSoFar          float64
	Predecessor        *graph.Connection
	EstimatedTotalCost float64
}

func newNodeState() *NodeState {
	return &NodeState{
		Category:           Unvisited,
		CostSoFar:          math.Inf(1),
		EstimatedTotalCost: math.Inf(1),
	}
}

// heuristicTerm is the part of the estimate that does not depend on the cost
// so far. It is fixed for a (node, goal) pair within one run.
func (s *NodeState) heuristicTerm() float64 {
	return s.EstimatedTotalCost - s.CostSoFar
}

// EventKind classifies observer events.
type EventKind int

const (
	// EventTransition reports a category change of Node.
	EventTransition EventKind = iota
	// EventCurrent reports that Node was selected for expansion.
	EventCurrent
	// EventPath reports that Node lies on the solved path. Path events are
	// emitted from the goal back to the start.
	EventPath
)

// String returns the lowercase event kind name.
func (k EventKind) String() string {
	switch k {
	case EventTransition:
		return "transition"
	case EventCurrent:
		return "current"
	case EventPath:
		return "path"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a state change a visualizer may react to.
// From and To are only meaningful for EventTransition.
type Event struct {
	Kind EventKind
	Node graph.Node
	From Category
	To   Category
	Step int
}

// Observer receives events synchronously from inside [Run.Step]. It must not
// call back into the run.
type Observer func(Event)
