package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ignatij/agentflow/pkg/models"
	"github.com/ignatij/agentflow/pkg/service"
	"github.com/ignatij/agentflow/pkg/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type logger struct{}

func (l logger) Infof(format string, args ...interface{})  {}
func (l logger) Errorf(format string, args ...interface{}) {}

type stubInvoker struct {
	payload map[string]interface{}
	errs    map[string]error
	calls   int
}

func (s *stubInvoker) Invoke(ctx context.Context, node models.Node, inputs map[string]interface{}) (map[string]interface{}, error) {
	s.calls++
	if err, ok := s.errs[node.ID]; ok {
		return nil, err
	}
	return s.payload, nil
}

func linearWorkflow() models.Workflow {
	return models.Workflow{
		Name: "pipeline",
		Nodes: []models.Node{
			{ID: "t", Kind: models.TriggerNode, Label: "manual"},
			{ID: "a", Kind: models.AgentNode, AgentID: "agent-a"},
			{ID: "b", Kind: models.AgentNode, AgentID: "agent-b"},
		},
		Edges: []models.Edge{
			{Source: "t", SourceHandle: "trigger-out", Target: "a", TargetHandle: "trigger-in"},
			{Source: "a", SourceHandle: "trigger-out", Target: "b", TargetHandle: "trigger-in"},
		},
	}
}

func TestWorkflowService(t *testing.T) {
	newService := func(invoker *stubInvoker) *service.WorkflowService {
		return service.NewWorkflowService(storage.NewMockStore(), invoker, logger{})
	}

	t.Run("CreateWorkflowValidatesName", func(t *testing.T) {
		svc := newService(&stubInvoker{})
		_, err := svc.CreateWorkflow(models.Workflow{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")

		_, err = svc.CreateWorkflow(models.Workflow{Name: strings.Repeat("x", 101)})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "too long")
	})

	t.Run("ExecuteAppendsToHistory", func(t *testing.T) {
		invoker := &stubInvoker{payload: map[string]interface{}{"ok": true}}
		svc := newService(invoker)
		id, err := svc.CreateWorkflow(linearWorkflow())
		assert.NoError(t, err)

		result, err := svc.ExecuteWorkflow(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, models.SuccessExecutionStatus, result.Status)
		assert.Equal(t, 2, invoker.calls)

		logs, err := svc.RecentExecutions(id, 10)
		assert.NoError(t, err)
		assert.Len(t, logs, 1)
		assert.Equal(t, result.ExecutionID, logs[0].ExecutionID)
		assert.Equal(t, models.SuccessExecutionStatus, logs[0].Status)
	})

	t.Run("PartialRunIsStillLogged", func(t *testing.T) {
		invoker := &stubInvoker{
			payload: map[string]interface{}{"ok": true},
			errs:    map[string]error{"a": errors.New("purchase declined")},
		}
		svc := newService(invoker)
		id, err := svc.CreateWorkflow(linearWorkflow())
		assert.NoError(t, err)

		result, err := svc.ExecuteWorkflow(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, models.PartialExecutionStatus, result.Status)
		assert.Equal(t, models.ExecutionSummary{Total: 2, Successful: 1, Failed: 1}, result.Summary)

		logs, err := svc.RecentExecutions(id, 10)
		assert.NoError(t, err)
		assert.Len(t, logs, 1)
		assert.Equal(t, models.PartialExecutionStatus, logs[0].Status)
	})

	t.Run("StructuralFailureLeavesHistoryUntouched", func(t *testing.T) {
		invoker := &stubInvoker{}
		svc := newService(invoker)
		wf := linearWorkflow()
		wf.Nodes = append(wf.Nodes, models.Node{ID: "t2", Kind: models.TriggerNode})
		id, err := svc.CreateWorkflow(wf)
		assert.NoError(t, err)

		_, err = svc.ExecuteWorkflow(context.Background(), id)
		assert.Error(t, err)
		assert.Equal(t, 0, invoker.calls, "structural failure must not invoke any agent")

		logs, err := svc.RecentExecutions(id, 10)
		assert.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("ValidateWithoutExecuting", func(t *testing.T) {
		invoker := &stubInvoker{}
		svc := newService(invoker)
		id, err := svc.CreateWorkflow(linearWorkflow())
		assert.NoError(t, err)

		assert.NoError(t, svc.ValidateWorkflow(id))
		assert.Equal(t, 0, invoker.calls)
	})

	t.Run("ExecuteMissingWorkflow", func(t *testing.T) {
		svc := newService(&stubInvoker{})
		_, err := svc.ExecuteWorkflow(context.Background(), 404)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("RecentExecutionsClampsLimit", func(t *testing.T) {
		invoker := &stubInvoker{payload: map[string]interface{}{"ok": true}}
		svc := newService(invoker)
		id, err := svc.CreateWorkflow(linearWorkflow())
		assert.NoError(t, err)

		for i := 0; i < models.MaxExecutionLogs+2; i++ {
			_, err := svc.ExecuteWorkflow(context.Background(), id)
			assert.NoError(t, err)
		}
		logs, err := svc.RecentExecutions(id, 100)
		assert.NoError(t, err)
		assert.Len(t, logs, models.MaxExecutionLogs)
	})
}
