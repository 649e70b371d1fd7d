package service

import (
	"context"
	"fmt"

	"github.com/ignatij/agentflow/pkg/engine"
	"github.com/ignatij/agentflow/pkg/models"
	"github.com/ignatij/agentflow/pkg/storage"
	"github.com/pkg/errors"
)

// Logger defines the logging interface for WorkflowService
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// WorkflowService is the caller-facing surface of the engine: it loads
// workflows from the store, runs them through the executor, and appends
// the finished report to the workflow's bounded execution history.
type WorkflowService struct {
	store    storage.Store
	executor *engine.Executor
	logger   Logger
}

func NewWorkflowService(store storage.Store, invoker engine.Invoker, logger Logger) *WorkflowService {
	return &WorkflowService{
		store:    store,
		executor: engine.NewExecutor(invoker, logger),
		logger:   logger,
	}
}

// CreateWorkflow persists a new workflow graph.
func (s *WorkflowService) CreateWorkflow(wf models.Workflow) (id int64, err error) {
	if wf.Name == "" {
		return 0, errors.New("workflow name cannot be empty")
	}
	if len(wf.Name) > 100 {
		return 0, errors.New("workflow name too long (max 100 characters)")
	}
	txStore, err := s.store.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	id, err = txStore.SaveWorkflow(wf)
	if err != nil {
		return 0, err
	}
	s.logger.Infof("Created workflow '%s' with ID %d", wf.Name, id)
	return id, nil
}

// GetWorkflow fetches a workflow with its execution history.
func (s *WorkflowService) GetWorkflow(workflowID int64) (models.Workflow, error) {
	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return models.Workflow{}, fmt.Errorf("failed to get workflow %d: %v", workflowID, err)
	}
	return wf, nil
}

func (s *WorkflowService) ListWorkflows() ([]models.Workflow, error) {
	return s.store.ListWorkflows()
}

// ValidateWorkflow runs the structural pre-flight check without
// executing anything.
func (s *WorkflowService) ValidateWorkflow(workflowID int64) error {
	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return fmt.Errorf("failed to get workflow %d: %v", workflowID, err)
	}
	return engine.Validate(wf)
}

// ExecuteWorkflow runs a workflow now and appends the report to its
// execution history. Structural failures return an error and leave the
// history untouched; node-level failures are carried inside the report.
func (s *WorkflowService) ExecuteWorkflow(ctx context.Context, workflowID int64) (models.ExecutionResult, error) {
	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return models.ExecutionResult{}, fmt.Errorf("workflow %d not found: %v", workflowID, err)
	}

	result, err := s.executor.Run(ctx, wf)
	if err != nil {
		return models.ExecutionResult{}, errors.Wrapf(err, "workflow %d failed validation", workflowID)
	}

	if appendErr := s.appendLog(workflowID, result); appendErr != nil {
		// The run itself finished; surface the persistence failure but
		// still hand the report back.
		s.logger.Errorf("Failed to append execution log for workflow %d: %v", workflowID, appendErr)
		return result, appendErr
	}
	return result, nil
}

func (s *WorkflowService) appendLog(workflowID int64, result models.ExecutionResult) (err error) {
	txStore, err := s.store.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback: %v", rollbackErr)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	err = txStore.AppendExecutionLog(workflowID, result)
	return err
}

// RecentExecutions returns up to limit entries of a workflow's bounded
// history, newest first.
func (s *WorkflowService) RecentExecutions(workflowID int64, limit int) ([]models.ExecutionLog, error) {
	if limit <= 0 || limit > models.MaxExecutionLogs {
		limit = models.MaxExecutionLogs
	}
	return s.store.GetRecentExecutions(workflowID, limit)
}
