package engine

import (
	"github.com/ignatij/agentflow/pkg/models"
)

// Order computes the execution order of a workflow: starting at the
// trigger, follow the single outgoing control edge of each node and
// collect the agent nodes along the way. The trigger itself only seeds
// the walk, it is never executed as a job.
//
// The model supports exactly one outgoing control edge per node (a
// linear chain); more than one is reported as ambiguous rather than
// interpreted as fan-out.
func Order(wf models.Workflow) ([]string, error) {
	triggers := wf.TriggerNodes()
	if len(triggers) == 0 {
		return nil, &NoTriggerError{}
	}
	if len(triggers) > 1 {
		return nil, &MultipleTriggersError{Count: len(triggers)}
	}

	var order []string
	visited := map[string]bool{triggers[0].ID: true}
	current := triggers[0].ID
	for range wf.Nodes {
		outgoing := wf.ControlEdgesFrom(current)
		if len(outgoing) == 0 {
			break
		}
		if len(outgoing) > 1 {
			return nil, &AmbiguousControlFlowError{NodeID: current, Count: len(outgoing)}
		}
		next := outgoing[0].Target
		if visited[next] {
			return nil, &CycleError{NodeID: next}
		}
		visited[next] = true
		node, ok := wf.NodeByID(next)
		if !ok {
			return nil, &UnknownHandleError{NodeID: next, Handle: outgoing[0].TargetHandle}
		}
		if node.Kind == models.AgentNode {
			order = append(order, next)
		}
		current = next
	}
	return order, nil
}
