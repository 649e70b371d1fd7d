package engine

import (
	"github.com/ignatij/agentflow/pkg/models"
)

// Validate checks the structural invariants of a workflow graph without
// executing anything. It short-circuits on the first violation, so
// callers can use it as a standalone pre-flight check.
func Validate(wf models.Workflow) error {
	triggers := wf.TriggerNodes()
	if len(triggers) == 0 {
		return &NoTriggerError{}
	}
	if len(triggers) > 1 {
		return &MultipleTriggersError{Count: len(triggers)}
	}

	// Walk the control chain from the trigger; a revisited node id is a
	// cycle. Bounded by node count, so a malformed graph cannot loop.
	visited := map[string]bool{triggers[0].ID: true}
	current := triggers[0].ID
	for range wf.Nodes {
		outgoing := wf.ControlEdgesFrom(current)
		if len(outgoing) == 0 {
			break
		}
		if len(outgoing) > 1 {
			return &AmbiguousControlFlowError{NodeID: current, Count: len(outgoing)}
		}
		next := outgoing[0].Target
		if visited[next] {
			return &CycleError{NodeID: next}
		}
		visited[next] = true
		current = next
	}

	for _, e := range wf.Edges {
		if !e.IsData() || e.MixesChannels() {
			continue
		}
		source, ok := wf.NodeByID(e.Source)
		if !ok {
			return &UnknownHandleError{NodeID: e.Source, Handle: e.SourceHandle}
		}
		if _, ok := source.Output(e.SourceParam()); !ok {
			return &UnknownHandleError{NodeID: e.Source, Handle: e.SourceHandle}
		}
		target, ok := wf.NodeByID(e.Target)
		if !ok {
			return &UnknownHandleError{NodeID: e.Target, Handle: e.TargetHandle}
		}
		if _, ok := target.Input(e.TargetParam()); !ok {
			return &UnknownHandleError{NodeID: e.Target, Handle: e.TargetHandle}
		}
	}

	for _, e := range wf.Edges {
		if e.MixesChannels() {
			return &MixedHandleError{Source: e.Source, Target: e.Target}
		}
	}
	return nil
}
