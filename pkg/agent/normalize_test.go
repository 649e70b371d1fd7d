package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeJob(t *testing.T) {
	t.Run("SnakeCaseResponse", func(t *testing.T) {
		job, err := normalizeJob(map[string]interface{}{
			"job_id":                "j1",
			"blockchain_identifier": "chain",
			"seller_vkey":           "vkey",
			"input_hash":            "hash",
			"agent_identifier":      "agent",
		})
		assert.NoError(t, err)
		assert.Equal(t, "j1", job.JobID)
		assert.Equal(t, "chain", job.BlockchainIdentifier)
		assert.Equal(t, "vkey", job.SellerVKey)
		assert.Equal(t, "hash", job.InputHash)
		assert.Equal(t, "agent", job.AgentIdentifier)
	})

	t.Run("CamelCaseResponse", func(t *testing.T) {
		job, err := normalizeJob(map[string]interface{}{
			"jobId":                "j2",
			"blockchainIdentifier": "chain",
			"sellerVkey":           "vkey",
			"inputHash":            "hash",
			"agentIdentifier":      "agent",
		})
		assert.NoError(t, err)
		assert.Equal(t, "j2", job.JobID)
		assert.Equal(t, "chain", job.BlockchainIdentifier)
		assert.Equal(t, "vkey", job.SellerVKey)
		assert.Equal(t, "hash", job.InputHash)
		assert.Equal(t, "agent", job.AgentIdentifier)
	})

	t.Run("DataEnvelopeWins", func(t *testing.T) {
		job, err := normalizeJob(map[string]interface{}{
			"job_id": "outer",
			"data": map[string]interface{}{
				"job_id":     "inner",
				"sellerVkey": "vkey",
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, "inner", job.JobID)
		assert.Equal(t, "vkey", job.SellerVKey)
	})

	t.Run("MissingJobIDFails", func(t *testing.T) {
		_, err := normalizeJob(map[string]interface{}{"sellerVkey": "vkey"})
		assert.Error(t, err)
	})

	t.Run("NonStringValuesAreSkipped", func(t *testing.T) {
		job, err := normalizeJob(map[string]interface{}{
			"job_id": float64(42),
			"jobId":  "j3",
		})
		assert.NoError(t, err)
		assert.Equal(t, "j3", job.JobID)
	})
}
