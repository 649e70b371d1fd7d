package models

import "time"

// MaxExecutionLogs bounds the per-workflow execution history. The store
// evicts the oldest entry once the bound is exceeded.
const MaxExecutionLogs = 10

// Workflow represents a persisted agent graph: one trigger node, agent
// nodes, and the edges wiring them together. The engine treats it as
// read-only input; only the store appends execution logs.
type Workflow struct {
	ID            int64          `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Nodes         []Node         `json:"nodes"`
	Edges         []Edge         `json:"edges"`
	ExecutionLogs []ExecutionLog `json:"execution_logs,omitempty"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// NodeByID looks up a node by its id.
func (w Workflow) NodeByID(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// TriggerNodes returns every trigger node in the graph. A valid graph
// has exactly one.
func (w Workflow) TriggerNodes() []Node {
	var triggers []Node
	for _, n := range w.Nodes {
		if n.Kind == TriggerNode {
			triggers = append(triggers, n)
		}
	}
	return triggers
}

// ControlEdgesFrom returns the outgoing control edges of a node.
func (w Workflow) ControlEdgesFrom(nodeID string) []Edge {
	var edges []Edge
	for _, e := range w.Edges {
		if e.Source == nodeID && e.IsControl() {
			edges = append(edges, e)
		}
	}
	return edges
}

// DataEdgesInto returns the data edges targeting a node.
func (w Workflow) DataEdgesInto(nodeID string) []Edge {
	var edges []Edge
	for _, e := range w.Edges {
		if e.Target == nodeID && e.IsData() {
			edges = append(edges, e)
		}
	}
	return edges
}
