package engine

import "fmt"

// Structural errors abort a run before any agent is invoked.

type NoTriggerError struct{}

func (e *NoTriggerError) Error() string {
	return "workflow has no trigger node"
}

type MultipleTriggersError struct {
	Count int
}

func (e *MultipleTriggersError) Error() string {
	return fmt.Sprintf("workflow has %d trigger nodes, expected exactly one", e.Count)
}

type CycleError struct {
	NodeID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("control flow cycle detected at node '%s'", e.NodeID)
}

type UnknownHandleError struct {
	NodeID string
	Handle string
}

func (e *UnknownHandleError) Error() string {
	return fmt.Sprintf("edge handle '%s' does not match any declared parameter on node '%s'", e.Handle, e.NodeID)
}

type MixedHandleError struct {
	Source string
	Target string
}

func (e *MixedHandleError) Error() string {
	return fmt.Sprintf("edge %s -> %s connects a control handle to a data handle", e.Source, e.Target)
}

type AmbiguousControlFlowError struct {
	NodeID string
	Count  int
}

func (e *AmbiguousControlFlowError) Error() string {
	return fmt.Sprintf("node '%s' has %d outgoing control edges, expected at most one", e.NodeID, e.Count)
}

// Resolution errors are scoped to a single node: the node is recorded
// as failed and the run moves on to its siblings.

type MissingUpstreamOutputError struct {
	NodeID     string
	Input      string
	UpstreamID string
	Output     string
}

func (e *MissingUpstreamOutputError) Error() string {
	return fmt.Sprintf("input '%s' of node '%s' depends on output '%s' of node '%s' which produced no value",
		e.Input, e.NodeID, e.Output, e.UpstreamID)
}

type MissingRequiredInputError struct {
	NodeID string
	Input  string
}

func (e *MissingRequiredInputError) Error() string {
	return fmt.Sprintf("required input '%s' of node '%s' has no connection and no manual value", e.Input, e.NodeID)
}

type TypeCoercionError struct {
	NodeID string
	Input  string
	Value  string
	Type   string
	Cause  error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("input '%s' of node '%s': cannot parse %q as %s: %v", e.Input, e.NodeID, e.Value, e.Type, e.Cause)
}

func (e *TypeCoercionError) Unwrap() error { return e.Cause }
