package agent

import (
	"fmt"
)

// jobDescriptor holds the normalized fields of a start_job response.
// The external services disagree on naming conventions, so every field
// is resolved through an alias table once, here, instead of scattering
// fallbacks through the invocation logic.
type jobDescriptor struct {
	JobID                string
	BlockchainIdentifier string
	SellerVKey           string
	InputHash            string
	AgentIdentifier      string
}

var (
	jobIDAliases      = []string{"job_id", "jobId", "id"}
	blockchainAliases = []string{"blockchainIdentifier", "blockchain_identifier"}
	sellerVKeyAliases = []string{"sellerVkey", "seller_vkey", "sellerVKey"}
	inputHashAliases  = []string{"input_hash", "inputHash"}
	agentIDAliases    = []string{"agentIdentifier", "agent_identifier"}
)

// normalizeJob extracts a jobDescriptor from a raw start_job response,
// accepting either naming convention per field. Some services wrap the
// payload in a "data" envelope; fields found there win over top-level
// ones. Only the job id is mandatory.
func normalizeJob(raw map[string]interface{}) (jobDescriptor, error) {
	if data, ok := raw["data"].(map[string]interface{}); ok {
		merged := make(map[string]interface{}, len(raw)+len(data))
		for k, v := range raw {
			merged[k] = v
		}
		for k, v := range data {
			merged[k] = v
		}
		raw = merged
	}

	job := jobDescriptor{
		JobID:                firstString(raw, jobIDAliases),
		BlockchainIdentifier: firstString(raw, blockchainAliases),
		SellerVKey:           firstString(raw, sellerVKeyAliases),
		InputHash:            firstString(raw, inputHashAliases),
		AgentIdentifier:      firstString(raw, agentIDAliases),
	}
	if job.JobID == "" {
		return jobDescriptor{}, fmt.Errorf("start_job response carries no job id under any of %v", jobIDAliases)
	}
	return job, nil
}

func firstString(m map[string]interface{}, aliases []string) string {
	for _, key := range aliases {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
