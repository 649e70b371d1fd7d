package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ignatij/agentflow/internal/log"
	"github.com/ignatij/agentflow/pkg/models"
	"github.com/ignatij/agentflow/pkg/service"
)

// NewHandler builds the REST surface around a workflow service:
//
//	GET  /health
//	GET  /workflows
//	POST /workflows
//	POST /workflows/{id}/execute
//	POST /workflows/{id}/validate
//	GET  /workflows/{id}/executions?limit=
func NewHandler(svc *service.WorkflowService) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/workflows", workflowsHandler(svc))
	mux.HandleFunc("/workflows/", workflowHandler(svc))
	return mux
}

func StartServer(port string, svc *service.WorkflowService) error {
	log.GetLogger().Infof("Starting agentflow server on :%s", port)
	return http.ListenAndServe(":"+port, NewHandler(svc))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "agentflow server is running")
}

func workflowsHandler(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listWorkflowsHTTP(w, svc)
		case http.MethodPost:
			createWorkflowHTTP(w, r, svc)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// workflowHandler routes /workflows/{id}/{action}.
func workflowHandler(svc *service.WorkflowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			http.Error(w, "Invalid workflow id", http.StatusBadRequest)
			return
		}
		action := ""
		if len(parts) > 2 {
			action = parts[2]
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			getWorkflowHTTP(w, svc, id)
		case action == "execute" && r.Method == http.MethodPost:
			executeWorkflowHTTP(w, r, svc, id)
		case action == "validate" && r.Method == http.MethodPost:
			validateWorkflowHTTP(w, svc, id)
		case action == "executions" && r.Method == http.MethodGet:
			recentExecutionsHTTP(w, r, svc, id)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	}
}

func createWorkflowHTTP(w http.ResponseWriter, r *http.Request, svc *service.WorkflowService) {
	var wf models.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		log.GetLogger().Errorf("Invalid workflow body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid workflow body: %v", err), http.StatusBadRequest)
		return
	}
	id, err := svc.CreateWorkflow(wf)
	if err != nil {
		log.GetLogger().Errorf("Failed to create workflow: %v", err)
		http.Error(w, fmt.Sprintf("Failed to create workflow: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

func listWorkflowsHTTP(w http.ResponseWriter, svc *service.WorkflowService) {
	workflows, err := svc.ListWorkflows()
	if err != nil {
		log.GetLogger().Errorf("Failed to list workflows: %v", err)
		http.Error(w, fmt.Sprintf("Failed to list workflows: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, workflows)
}

func getWorkflowHTTP(w http.ResponseWriter, svc *service.WorkflowService, id int64) {
	wf, err := svc.GetWorkflow(id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Workflow %d not found: %v", id, err), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func executeWorkflowHTTP(w http.ResponseWriter, r *http.Request, svc *service.WorkflowService, id int64) {
	result, err := svc.ExecuteWorkflow(r.Context(), id)
	if err != nil && result.ExecutionID == "" {
		log.GetLogger().Errorf("Failed to execute workflow %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to execute workflow %d: %v", id, err), http.StatusUnprocessableEntity)
		return
	}
	// Per-node diagnostics live inside the result; a partially failed
	// run is still a 200 with the full report.
	writeJSON(w, http.StatusOK, result)
}

func validateWorkflowHTTP(w http.ResponseWriter, svc *service.WorkflowService, id int64) {
	if err := svc.ValidateWorkflow(id); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
}

func recentExecutionsHTTP(w http.ResponseWriter, r *http.Request, svc *service.WorkflowService, id int64) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	logs, err := svc.RecentExecutions(id, limit)
	if err != nil {
		log.GetLogger().Errorf("Failed to list executions for workflow %d: %v", id, err)
		http.Error(w, fmt.Sprintf("Failed to list executions: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}
