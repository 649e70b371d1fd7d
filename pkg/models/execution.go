package models

import "time"

type NodeStatus string

const (
	PendingNodeStatus NodeStatus = "PENDING"
	RunningNodeStatus NodeStatus = "RUNNING"
	SuccessNodeStatus NodeStatus = "SUCCESS"
	FailedNodeStatus  NodeStatus = "FAILED"
)

type ExecutionStatus string

const (
	SuccessExecutionStatus ExecutionStatus = "SUCCESS"
	FailedExecutionStatus  ExecutionStatus = "FAILED"
	PartialExecutionStatus ExecutionStatus = "PARTIAL"
)

// NodeResult records the outcome of one node within a run.
type NodeResult struct {
	NodeID    string                 `json:"node_id"`
	NodeType  NodeKind               `json:"node_type"`
	Label     string                 `json:"label,omitempty"`
	Status    NodeStatus             `json:"status"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  time.Duration          `json:"duration"`
	Inputs    map[string]interface{} `json:"inputs,omitempty"` // resolved values actually sent
	Output    map[string]interface{} `json:"output,omitempty"`
	Error     string                 `json:"error,omitempty"` // set iff Status == FAILED
}

// ExecutionSummary counts node outcomes for one run.
type ExecutionSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// ExecutionTiming captures wall-clock bounds of one run.
type ExecutionTiming struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// ExecutionResult is the full report of one workflow run. Node results
// appear in scheduler order, one per node reachable from the trigger.
type ExecutionResult struct {
	ExecutionID string           `json:"execution_id"`
	TriggerType string           `json:"trigger_type"`
	Status      ExecutionStatus  `json:"status"`
	Nodes       []NodeResult     `json:"nodes"`
	Summary     ExecutionSummary `json:"summary"`
	Timing      ExecutionTiming  `json:"timing"`
}

// ExecutionLog is one persisted entry of a workflow's bounded history.
type ExecutionLog struct {
	ID          int64           `json:"id" db:"id"`
	WorkflowID  int64           `json:"workflow_id" db:"workflow_id"`
	ExecutionID string          `json:"execution_id" db:"execution_id"`
	Status      ExecutionStatus `json:"status" db:"status"`
	Result      ExecutionResult `json:"result"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
