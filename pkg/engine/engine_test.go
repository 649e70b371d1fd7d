package engine_test

import (
	"fmt"

	"github.com/ignatij/agentflow/pkg/models"
)

// shared graph builders for the engine tests

type logger struct{}

func (l logger) Infof(format string, args ...interface{})  {}
func (l logger) Errorf(format string, args ...interface{}) {}

func triggerNode(id string) models.Node {
	return models.Node{ID: id, Kind: models.TriggerNode, Label: "manual"}
}

func agentNode(id string, inputs []models.Parameter, outputs []models.Parameter) models.Node {
	return models.Node{
		ID:      id,
		Kind:    models.AgentNode,
		Label:   id,
		AgentID: "agent-" + id,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

func controlEdge(source, target string) models.Edge {
	return models.Edge{
		Source:       source,
		SourceHandle: "trigger-out",
		Target:       target,
		TargetHandle: "trigger-in",
	}
}

func dataEdge(source, output, target, input string) models.Edge {
	return models.Edge{
		Source:       source,
		SourceHandle: "output-" + output,
		Target:       target,
		TargetHandle: "input-" + input,
	}
}

// chainWorkflow builds trigger -> a1 -> a2 -> ... -> an.
func chainWorkflow(n int) models.Workflow {
	wf := models.Workflow{ID: 1, Name: "chain", Nodes: []models.Node{triggerNode("t")}}
	prev := "t"
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("a%d", i)
		wf.Nodes = append(wf.Nodes, agentNode(id, nil, nil))
		wf.Edges = append(wf.Edges, controlEdge(prev, id))
		prev = id
	}
	return wf
}
