package agent

import (
	"fmt"
	"time"
)

// SubmitFailedError is terminal: a failed start_job call is never retried.
type SubmitFailedError struct {
	AgentURL string
	Cause    error
}

func (e *SubmitFailedError) Error() string {
	return fmt.Sprintf("start_job against %s failed: %v", e.AgentURL, e.Cause)
}

func (e *SubmitFailedError) Unwrap() error { return e.Cause }

// PurchaseFailedError is terminal: a payment authorization is never
// retried blindly, since the protocol carries no idempotency key and a
// retry after an ambiguous failure risks a double charge.
type PurchaseFailedError struct {
	Cause error
}

func (e *PurchaseFailedError) Error() string {
	return fmt.Sprintf("purchase authorization failed: %v", e.Cause)
}

func (e *PurchaseFailedError) Unwrap() error { return e.Cause }

// JobFailedError reports a job the agent itself declared failed.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job %s reported failed", e.JobID)
	}
	return fmt.Sprintf("job %s reported failed: %s", e.JobID, e.Message)
}

// JobTimeoutError reports a job that reached no terminal status within
// the polling ceiling.
type JobTimeoutError struct {
	JobID    string
	Attempts int
	Elapsed  time.Duration
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("job %s not completed after %d poll attempts over %s", e.JobID, e.Attempts, e.Elapsed)
}

// CancelledError reports a run aborted by the caller mid-poll, as
// opposed to one that exhausted the polling ceiling.
type CancelledError struct {
	JobID string
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("invocation of job %s cancelled: %v", e.JobID, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }
