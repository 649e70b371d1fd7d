package storage

import (
	"github.com/ignatij/agentflow/pkg/models"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a workflow does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations for agentflow. The engine
// itself never writes: it reads workflows and hands finished execution
// results back to the caller, which appends them here.
type Store interface {
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Workflow operations
	SaveWorkflow(wf models.Workflow) (int64, error)
	GetWorkflow(id int64) (models.Workflow, error)
	ListWorkflows() ([]models.Workflow, error)

	// Execution history operations. AppendExecutionLog enforces the
	// bounded history: past models.MaxExecutionLogs entries the oldest
	// is evicted, atomically with the append.
	AppendExecutionLog(workflowID int64, result models.ExecutionResult) error
	GetRecentExecutions(workflowID int64, limit int) ([]models.ExecutionLog, error)
}
