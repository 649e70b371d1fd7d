package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignatij/agentflow/pkg/models"
	"github.com/ignatij/agentflow/pkg/storage"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// PostgresStore persists workflow graphs as jsonb and enforces the
// bounded execution history inside the append transaction.
type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

// workflowRow mirrors the workflows table; the graph columns hold json.
type workflowRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Nodes     []byte    `db:"nodes"`
	Edges     []byte    `db:"edges"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SaveWorkflow creates a new workflow and returns its ID
func (s *PostgresStore) SaveWorkflow(wf models.Workflow) (int64, error) {
	nodes, err := json.Marshal(wf.Nodes)
	if err != nil {
		return 0, fmt.Errorf("save workflow: encode nodes: %w", err)
	}
	edges, err := json.Marshal(wf.Edges)
	if err != nil {
		return 0, fmt.Errorf("save workflow: encode edges: %w", err)
	}
	var wfID int64
	err = s.db.QueryRowx("INSERT INTO workflows (name, nodes, edges, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		wf.Name, nodes, edges, time.Now(), time.Now()).Scan(&wfID)
	if err != nil {
		return 0, fmt.Errorf("save workflow: %w", err)
	}
	return wfID, nil
}

// GetWorkflow retrieves a workflow by ID, including its recent
// execution history (newest last, bounded by the store).
func (s *PostgresStore) GetWorkflow(id int64) (models.Workflow, error) {
	var row workflowRow
	err := s.db.Get(&row, "SELECT * FROM workflows WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Workflow{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Workflow{}, err
	}
	wf, err := row.toWorkflow()
	if err != nil {
		return models.Workflow{}, fmt.Errorf("get workflow %d: %w", id, err)
	}

	logs, err := s.selectRecentLogs(id, models.MaxExecutionLogs)
	if err != nil {
		return models.Workflow{}, fmt.Errorf("get workflow %d: %w", id, err)
	}
	// stored newest-first; workflow history reads oldest-first
	for i := len(logs) - 1; i >= 0; i-- {
		wf.ExecutionLogs = append(wf.ExecutionLogs, logs[i])
	}
	return wf, nil
}

func (r workflowRow) toWorkflow() (models.Workflow, error) {
	wf := models.Workflow{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Nodes) > 0 {
		if err := json.Unmarshal(r.Nodes, &wf.Nodes); err != nil {
			return models.Workflow{}, fmt.Errorf("decode nodes: %w", err)
		}
	}
	if len(r.Edges) > 0 {
		if err := json.Unmarshal(r.Edges, &wf.Edges); err != nil {
			return models.Workflow{}, fmt.Errorf("decode edges: %w", err)
		}
	}
	return wf, nil
}

func (s *PostgresStore) ListWorkflows() ([]models.Workflow, error) {
	var rows []workflowRow
	err := s.db.Select(&rows, "SELECT id, name, nodes, edges, created_at, updated_at FROM workflows ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	workflows := make([]models.Workflow, 0, len(rows))
	for _, row := range rows {
		wf, err := row.toWorkflow()
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, nil
}

type executionLogRow struct {
	ID          int64     `db:"id"`
	WorkflowID  int64     `db:"workflow_id"`
	ExecutionID string    `db:"execution_id"`
	Status      string    `db:"status"`
	Result      []byte    `db:"result"`
	CreatedAt   time.Time `db:"created_at"`
}

// AppendExecutionLog inserts one history entry and trims the workflow's
// history down to models.MaxExecutionLogs in the same statement scope,
// so overlapping runs cannot grow the history past the bound.
func (s *PostgresStore) AppendExecutionLog(workflowID int64, result models.ExecutionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("append execution log: encode result: %w", err)
	}
	_, err = s.db.Exec("INSERT INTO execution_logs (workflow_id, execution_id, status, result, created_at) VALUES ($1, $2, $3, $4, $5)",
		workflowID, result.ExecutionID, result.Status, payload, time.Now())
	if err != nil {
		return fmt.Errorf("append execution log: %w", err)
	}
	_, err = s.db.Exec(`
		DELETE FROM execution_logs
		WHERE workflow_id = $1
		AND id NOT IN (
			SELECT id FROM execution_logs
			WHERE workflow_id = $1
			ORDER BY id DESC
			LIMIT $2
		)`, workflowID, models.MaxExecutionLogs)
	if err != nil {
		return fmt.Errorf("trim execution log: %w", err)
	}
	return nil
}

// GetRecentExecutions returns up to limit history entries, newest first.
func (s *PostgresStore) GetRecentExecutions(workflowID int64, limit int) ([]models.ExecutionLog, error) {
	if limit <= 0 || limit > models.MaxExecutionLogs {
		limit = models.MaxExecutionLogs
	}
	return s.selectRecentLogs(workflowID, limit)
}

func (s *PostgresStore) selectRecentLogs(workflowID int64, limit int) ([]models.ExecutionLog, error) {
	var rows []executionLogRow
	err := s.db.Select(&rows,
		"SELECT id, workflow_id, execution_id, status, result, created_at FROM execution_logs WHERE workflow_id = $1 ORDER BY id DESC LIMIT $2",
		workflowID, limit)
	if err != nil {
		return nil, err
	}
	logs := make([]models.ExecutionLog, 0, len(rows))
	for _, row := range rows {
		entry := models.ExecutionLog{
			ID:          row.ID,
			WorkflowID:  row.WorkflowID,
			ExecutionID: row.ExecutionID,
			Status:      models.ExecutionStatus(row.Status),
			CreatedAt:   row.CreatedAt,
		}
		if len(row.Result) > 0 {
			if err := json.Unmarshal(row.Result, &entry.Result); err != nil {
				return nil, fmt.Errorf("decode execution log %d: %w", row.ID, err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
