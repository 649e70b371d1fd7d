package storage_test

import (
	"fmt"
	"testing"

	"github.com/ignatij/agentflow/pkg/models"
	"github.com/ignatij/agentflow/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestMockStore_Workflows(t *testing.T) {
	store := storage.NewMockStore()

	id, err := store.SaveWorkflow(models.Workflow{Name: "swap-pipeline"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), id)

	wf, err := store.GetWorkflow(id)
	assert.NoError(t, err)
	assert.Equal(t, "swap-pipeline", wf.Name)

	_, err = store.GetWorkflow(999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	workflows, err := store.ListWorkflows()
	assert.NoError(t, err)
	assert.Len(t, workflows, 1)
}

func TestMockStore_ExecutionHistoryBound(t *testing.T) {
	store := storage.NewMockStore()
	id, err := store.SaveWorkflow(models.Workflow{Name: "bounded"})
	assert.NoError(t, err)

	for i := 1; i <= models.MaxExecutionLogs+1; i++ {
		result := models.ExecutionResult{
			ExecutionID: fmt.Sprintf("exec-%d", i),
			Status:      models.SuccessExecutionStatus,
		}
		assert.NoError(t, store.AppendExecutionLog(id, result))
	}

	wf, err := store.GetWorkflow(id)
	assert.NoError(t, err)
	assert.Len(t, wf.ExecutionLogs, models.MaxExecutionLogs, "11th append must evict the oldest entry")
	assert.Equal(t, "exec-2", wf.ExecutionLogs[0].ExecutionID, "oldest surviving entry")
	assert.Equal(t, "exec-11", wf.ExecutionLogs[len(wf.ExecutionLogs)-1].ExecutionID)

	// order preserved, oldest first
	for i, entry := range wf.ExecutionLogs {
		assert.Equal(t, fmt.Sprintf("exec-%d", i+2), entry.ExecutionID)
	}
}

func TestMockStore_GetRecentExecutions(t *testing.T) {
	store := storage.NewMockStore()
	id, err := store.SaveWorkflow(models.Workflow{Name: "recent"})
	assert.NoError(t, err)

	for i := 1; i <= 3; i++ {
		result := models.ExecutionResult{ExecutionID: fmt.Sprintf("exec-%d", i)}
		assert.NoError(t, store.AppendExecutionLog(id, result))
	}

	logs, err := store.GetRecentExecutions(id, 2)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, "exec-3", logs[0].ExecutionID, "newest first")
	assert.Equal(t, "exec-2", logs[1].ExecutionID)

	all, err := store.GetRecentExecutions(id, 0)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMockStore_AppendToMissingWorkflow(t *testing.T) {
	store := storage.NewMockStore()
	err := store.AppendExecutionLog(42, models.ExecutionResult{ExecutionID: "exec-1"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
