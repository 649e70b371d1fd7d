package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatij/agentflow/pkg/models"
)

// Logger defines the logging interface for the Executor
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Invoker runs one agent node's job lifecycle and returns its output
// payload. Implemented by the agent package; faked in tests.
type Invoker interface {
	Invoke(ctx context.Context, node models.Node, inputs map[string]interface{}) (map[string]interface{}, error)
}

// Executor drives one workflow run: validate, order, then resolve and
// invoke each agent node in turn, threading outputs forward. A node
// failure never aborts the run; only nodes whose inputs depend on the
// failed node fail fast without a network call.
type Executor struct {
	invoker Invoker
	logger  Logger
}

func NewExecutor(invoker Invoker, logger Logger) *Executor {
	return &Executor{invoker: invoker, logger: logger}
}

// Run executes the workflow and returns the aggregated report. The
// returned error is non-nil only for structural failures, in which case
// no agent was invoked and no report is produced. Appending the report
// to the workflow's history is the caller's job, not the executor's.
func (ex *Executor) Run(ctx context.Context, wf models.Workflow) (models.ExecutionResult, error) {
	if err := Validate(wf); err != nil {
		return models.ExecutionResult{}, err
	}
	order, err := Order(wf)
	if err != nil {
		return models.ExecutionResult{}, err
	}

	result := models.ExecutionResult{
		ExecutionID: uuid.NewString(),
		TriggerType: triggerType(wf),
		Timing:      models.ExecutionTiming{StartTime: time.Now()},
	}
	ex.logger.Infof("Starting execution %s of workflow %d (%d nodes)", result.ExecutionID, wf.ID, len(order))

	priorOutputs := make(map[string]map[string]interface{})
	cancelled := false
	for _, nodeID := range order {
		node, _ := wf.NodeByID(nodeID)
		if cancelled {
			result.Nodes = append(result.Nodes, skippedResult(node, ctx.Err()))
			continue
		}
		nr := ex.runNode(ctx, node, wf, priorOutputs)
		if nr.Status == models.SuccessNodeStatus {
			priorOutputs[node.ID] = nr.Output
		}
		result.Nodes = append(result.Nodes, nr)
		if ctx.Err() != nil {
			cancelled = true
		}
	}

	result.Timing.EndTime = time.Now()
	result.Timing.Duration = result.Timing.EndTime.Sub(result.Timing.StartTime)
	result.Summary = summarize(result.Nodes)
	result.Status = overallStatus(result.Summary, cancelled)
	ex.logger.Infof("Execution %s finished with status %s (%d/%d nodes succeeded)",
		result.ExecutionID, result.Status, result.Summary.Successful, result.Summary.Total)
	return result, nil
}

func (ex *Executor) runNode(ctx context.Context, node models.Node, wf models.Workflow, priorOutputs map[string]map[string]interface{}) models.NodeResult {
	nr := models.NodeResult{
		NodeID:    node.ID,
		NodeType:  node.Kind,
		Label:     node.Label,
		Status:    models.RunningNodeStatus,
		StartTime: time.Now(),
	}

	inputs, err := Resolve(node, wf, priorOutputs)
	if err != nil {
		ex.logger.Errorf("Node %s: input resolution failed: %v", node.ID, err)
		return failNode(nr, err)
	}
	nr.Inputs = inputs

	payload, err := ex.invoker.Invoke(ctx, node, inputs)
	if err != nil {
		ex.logger.Errorf("Node %s: invocation failed: %v", node.ID, err)
		return failNode(nr, err)
	}

	nr.Output = mapOutputs(node, payload)
	nr.Status = models.SuccessNodeStatus
	nr.EndTime = time.Now()
	nr.Duration = nr.EndTime.Sub(nr.StartTime)
	ex.logger.Infof("Node %s succeeded in %s", node.ID, nr.Duration)
	return nr
}

func failNode(nr models.NodeResult, err error) models.NodeResult {
	nr.Status = models.FailedNodeStatus
	nr.Error = err.Error()
	nr.EndTime = time.Now()
	nr.Duration = nr.EndTime.Sub(nr.StartTime)
	return nr
}

func skippedResult(node models.Node, cause error) models.NodeResult {
	now := time.Now()
	msg := "execution cancelled"
	if cause != nil {
		msg = "execution cancelled: " + cause.Error()
	}
	return models.NodeResult{
		NodeID:    node.ID,
		NodeType:  node.Kind,
		Label:     node.Label,
		Status:    models.FailedNodeStatus,
		StartTime: now,
		EndTime:   now,
		Error:     msg,
	}
}

// mapOutputs projects an agent's result payload onto the node's
// declared outputs. A single declared output absorbs a single-valued
// payload even when the key names differ, since agents are not
// consistent about naming their result field.
func mapOutputs(node models.Node, payload map[string]interface{}) map[string]interface{} {
	if len(node.Outputs) == 0 {
		return payload
	}
	outputs := make(map[string]interface{}, len(node.Outputs))
	for _, p := range node.Outputs {
		if v, ok := payload[p.Name]; ok {
			outputs[p.Name] = v
		}
	}
	if len(outputs) == 0 && len(node.Outputs) == 1 && len(payload) == 1 {
		for _, v := range payload {
			outputs[node.Outputs[0].Name] = v
		}
	}
	return outputs
}

func triggerType(wf models.Workflow) string {
	triggers := wf.TriggerNodes()
	if len(triggers) == 1 && triggers[0].Label != "" {
		return triggers[0].Label
	}
	return "manual"
}

func summarize(nodes []models.NodeResult) models.ExecutionSummary {
	s := models.ExecutionSummary{Total: len(nodes)}
	for _, n := range nodes {
		if n.Status == models.SuccessNodeStatus {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}

func overallStatus(s models.ExecutionSummary, cancelled bool) models.ExecutionStatus {
	switch {
	case cancelled:
		return models.FailedExecutionStatus
	case s.Failed == 0:
		return models.SuccessExecutionStatus
	case s.Successful == 0:
		return models.FailedExecutionStatus
	default:
		return models.PartialExecutionStatus
	}
}
