package storage

import (
	"sync"
	"time"

	"github.com/ignatij/agentflow/pkg/models"
)

// mockStore implements storage.Store with in-memory storage. Safe for
// concurrent runs: the append-and-trim of execution history holds the
// lock for the whole operation.
type mockStore struct {
	mu        sync.Mutex
	workflows []models.Workflow
	logs      map[int64][]models.ExecutionLog
	nextID    int64
	nextLogID int64
}

func NewMockStore() Store {
	return &mockStore{logs: make(map[int64][]models.ExecutionLog)}
}

// Begin returns the store itself: the in-memory store applies every
// write immediately, so transactions are a no-op.
func (m *mockStore) Begin() (Store, error) {
	return m, nil
}

func (m *mockStore) Commit() error   { return nil }
func (m *mockStore) Rollback() error { return nil }
func (m *mockStore) Close() error    { return nil }

func (m *mockStore) SaveWorkflow(wf models.Workflow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	wf.ID = m.nextID
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = time.Now()
	}
	wf.UpdatedAt = time.Now()
	m.workflows = append(m.workflows, wf)
	return wf.ID, nil
}

func (m *mockStore) GetWorkflow(id int64) (models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, wf := range m.workflows {
		if wf.ID == id {
			wf.ExecutionLogs = append([]models.ExecutionLog(nil), m.logs[id]...)
			return wf, nil
		}
	}
	return models.Workflow{}, ErrNotFound
}

func (m *mockStore) ListWorkflows() ([]models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Workflow(nil), m.workflows...), nil
}

func (m *mockStore) AppendExecutionLog(workflowID int64, result models.ExecutionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, wf := range m.workflows {
		if wf.ID == workflowID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	m.nextLogID++
	entry := models.ExecutionLog{
		ID:          m.nextLogID,
		WorkflowID:  workflowID,
		ExecutionID: result.ExecutionID,
		Status:      result.Status,
		Result:      result,
		CreatedAt:   time.Now(),
	}
	logs := append(m.logs[workflowID], entry)
	if len(logs) > models.MaxExecutionLogs {
		logs = logs[len(logs)-models.MaxExecutionLogs:]
	}
	m.logs[workflowID] = logs
	return nil
}

func (m *mockStore) GetRecentExecutions(workflowID int64, limit int) ([]models.ExecutionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := m.logs[workflowID]
	if limit <= 0 || limit > len(logs) {
		limit = len(logs)
	}
	// newest first
	recent := make([]models.ExecutionLog, 0, limit)
	for i := len(logs) - 1; i >= len(logs)-limit; i-- {
		recent = append(recent, logs[i])
	}
	return recent, nil
}
