package agent

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignatij/agentflow/pkg/models"
	"github.com/pkg/errors"
)

const (
	DefaultSubmitTimeout      = 30 * time.Second
	DefaultPurchaseTimeout    = 60 * time.Second
	DefaultPollRequestTimeout = 15 * time.Second
	DefaultPollInterval       = 10 * time.Second
	DefaultJobTimeout         = 6 * time.Minute
)

// Logger defines the logging interface for the Client
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Config carries the payment-service coordinates and the protocol
// timing knobs. Zero durations fall back to the defaults above.
type Config struct {
	PurchaseURL   string // base URL of the shared payment-authorization service
	PurchaseToken string // static token sent on purchase requests
	Network       string // e.g. "Preprod"
	PurchaserID   string // identity of the requesting user

	SubmitTimeout      time.Duration
	PurchaseTimeout    time.Duration
	PollRequestTimeout time.Duration
	PollInterval       time.Duration
	JobTimeout         time.Duration // overall ceiling, measured from submission
}

// Client drives the three-phase job protocol against one agent service
// per invocation: submit the job, authorize payment, then poll for a
// terminal status. Submit and purchase failures are terminal; only
// individual poll attempts are retried, bounded by the job ceiling.
type Client struct {
	cfg    Config
	http   *http.Client
	logger Logger
}

func NewClient(cfg Config, logger Logger) *Client {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	if cfg.PurchaseTimeout <= 0 {
		cfg.PurchaseTimeout = DefaultPurchaseTimeout
	}
	if cfg.PollRequestTimeout <= 0 {
		cfg.PollRequestTimeout = DefaultPollRequestTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	// Per-phase deadlines come from request contexts, not a global
	// client timeout.
	return &Client{cfg: cfg, http: &http.Client{}, logger: logger}
}

// Invoke runs the full job lifecycle for one agent node. The state
// machine is strictly Submitting -> Purchasing -> Polling; no phase is
// skipped and any phase failure short-circuits to a terminal error.
func (c *Client) Invoke(ctx context.Context, node models.Node, inputs map[string]interface{}) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Cause: err}
	}
	correlationID, err := newCorrelationID()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate correlation id")
	}

	// The polling ceiling is anchored at submission, so slow purchase
	// or poll responses never extend it.
	deadline := time.Now().Add(c.cfg.JobTimeout)

	job, err := c.startJob(ctx, node, correlationID, inputs)
	if err != nil {
		return nil, &SubmitFailedError{AgentURL: node.AgentURL, Cause: err}
	}
	c.logger.Infof("Node %s: submitted job %s to %s", node.ID, job.JobID, node.AgentURL)

	if err := c.purchase(ctx, correlationID, job); err != nil {
		return nil, &PurchaseFailedError{Cause: err}
	}
	c.logger.Infof("Node %s: purchase authorized for job %s", node.ID, job.JobID)

	return c.pollStatus(ctx, node, job.JobID, deadline)
}

func newCorrelationID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (c *Client) startJob(ctx context.Context, node models.Node, correlationID string, inputs map[string]interface{}) (jobDescriptor, error) {
	body := map[string]interface{}{
		"identifier_from_purchaser": correlationID,
		"input_data":                inputs,
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancel()

	raw, err := c.postJSON(reqCtx, strings.TrimRight(node.AgentURL, "/")+"/start_job", body, nil)
	if err != nil {
		return jobDescriptor{}, err
	}
	return normalizeJob(raw)
}

// purchase echoes the normalized job descriptor back to the payment
// service. Every field goes out under both naming conventions at once,
// since the service side is as inconsistent as the agents are.
func (c *Client) purchase(ctx context.Context, correlationID string, job jobDescriptor) error {
	body := map[string]interface{}{
		"identifierFromPurchaser":   correlationID,
		"identifier_from_purchaser": correlationID,
		"blockchainIdentifier":      job.BlockchainIdentifier,
		"blockchain_identifier":     job.BlockchainIdentifier,
		"sellerVkey":                job.SellerVKey,
		"seller_vkey":               job.SellerVKey,
		"agentIdentifier":           job.AgentIdentifier,
		"agent_identifier":          job.AgentIdentifier,
		"inputHash":                 job.InputHash,
		"input_hash":                job.InputHash,
		"network":                   c.cfg.Network,
		"purchaserId":               c.cfg.PurchaserID,
		"purchaser_id":              c.cfg.PurchaserID,
	}
	headers := map[string]string{"token": c.cfg.PurchaseToken}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.PurchaseTimeout)
	defer cancel()

	_, err := c.postJSON(reqCtx, strings.TrimRight(c.cfg.PurchaseURL, "/")+"/purchase", body, headers)
	return err
}

// pollStatus polls the agent's status endpoint until the job reaches a
// terminal status or the ceiling elapses. A failed poll attempt is
// logged and retried on the next tick; only a "failed" job status or
// the ceiling itself terminates the loop early. The wait between
// attempts is a cancellable timer, never a busy wait.
func (c *Client) pollStatus(ctx context.Context, node models.Node, jobID string, deadline time.Time) (map[string]interface{}, error) {
	started := time.Now()
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, &CancelledError{JobID: jobID, Cause: err}
		}

		attempts++
		status, result, err := c.checkStatus(ctx, node, jobID)
		if err != nil {
			c.logger.Errorf("Node %s: poll attempt %d for job %s failed: %v", node.ID, attempts, jobID, err)
		} else {
			switch strings.ToLower(status) {
			case "completed":
				c.logger.Infof("Node %s: job %s completed after %d poll attempts", node.ID, jobID, attempts)
				return result, nil
			case "failed":
				return nil, &JobFailedError{JobID: jobID, Message: resultMessage(result)}
			}
		}

		if !time.Now().Add(c.cfg.PollInterval).Before(deadline) {
			return nil, &JobTimeoutError{JobID: jobID, Attempts: attempts, Elapsed: time.Since(started)}
		}

		timer := time.NewTimer(c.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &CancelledError{JobID: jobID, Cause: ctx.Err()}
		case <-timer.C:
		}
	}
}

func (c *Client) checkStatus(ctx context.Context, node models.Node, jobID string) (string, map[string]interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.PollRequestTimeout)
	defer cancel()

	statusURL := strings.TrimRight(node.AgentURL, "/") + "/status?job_id=" + url.QueryEscape(jobID)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, statusURL, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", nil, errors.Wrap(err, "failed to decode status response")
	}
	status, _ := raw["status"].(string)
	return status, resultPayload(raw), nil
}

// resultPayload shapes the "result" field of a status response into a
// map. Scalar results end up under a single "result" key.
func resultPayload(raw map[string]interface{}) map[string]interface{} {
	result, ok := raw["result"]
	if !ok || result == nil {
		return nil
	}
	if m, ok := result.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"result": result}
}

func resultMessage(result map[string]interface{}) string {
	if result == nil {
		return ""
	}
	for _, key := range []string{"error", "message", "result"} {
		if s, ok := result[key].(string); ok {
			return s
		}
	}
	return ""
}

func (c *Client) postJSON(ctx context.Context, rawURL string, body map[string]interface{}, headers map[string]string) (map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned %d: %s", rawURL, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	return raw, nil
}
