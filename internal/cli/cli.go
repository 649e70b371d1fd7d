package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ignatij/agentflow/internal/log"
	internal_storage "github.com/ignatij/agentflow/internal/storage"
	"github.com/ignatij/agentflow/pkg/agent"
	"github.com/ignatij/agentflow/pkg/models"
	"github.com/ignatij/agentflow/pkg/service"
	"github.com/spf13/cobra"
)

func SetupCLI(rootCmd *cobra.Command) {
	createCmd := &cobra.Command{
		Use:   "create [file]",
		Short: "Create a workflow from a JSON graph file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, store := initService(cmd)
			defer store.Close()
			raw, err := os.ReadFile(args[0])
			if err != nil {
				fail("failed to read %s: %v", args[0], err)
			}
			var wf models.Workflow
			if err := json.Unmarshal(raw, &wf); err != nil {
				fail("failed to parse %s: %v", args[0], err)
			}
			id, err := svc.CreateWorkflow(wf)
			if err != nil {
				fail("failed to create workflow: %v", err)
			}
			fmt.Fprintf(os.Stdout, "Created workflow '%s' with ID %d\n", wf.Name, id)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all workflows",
		Run: func(cmd *cobra.Command, args []string) {
			svc, store := initService(cmd)
			defer store.Close()
			workflows, err := svc.ListWorkflows()
			if err != nil {
				fail("failed to list workflows: %v", err)
			}
			if len(workflows) == 0 {
				fmt.Fprintf(os.Stdout, "No workflows found.\n")
				return
			}
			for _, wf := range workflows {
				fmt.Fprintf(os.Stdout, "- ID: %d, Name: %s, Nodes: %d, Edges: %d\n",
					wf.ID, wf.Name, len(wf.Nodes), len(wf.Edges))
			}
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [id]",
		Short: "Validate a workflow's graph without executing it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, store := initService(cmd)
			defer store.Close()
			id := parseID(args[0])
			if err := svc.ValidateWorkflow(id); err != nil {
				fail("workflow %d is invalid: %v", id, err)
			}
			fmt.Fprintf(os.Stdout, "Workflow %d is valid\n", id)
		},
	}

	executeCmd := &cobra.Command{
		Use:   "execute [id]",
		Short: "Execute a workflow now",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, store := initService(cmd)
			defer store.Close()
			id := parseID(args[0])

			// Ctrl-C aborts the in-flight poll loop instead of waiting
			// out the job ceiling.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := svc.ExecuteWorkflow(ctx, id)
			if err != nil && result.ExecutionID == "" {
				fail("failed to execute workflow %d: %v", id, err)
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				fail("failed to encode result: %v", err)
			}
			fmt.Fprintln(os.Stdout, string(out))
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show a workflow's recent executions",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, store := initService(cmd)
			defer store.Close()
			id := parseID(args[0])
			limit, _ := cmd.Flags().GetInt("limit")
			logs, err := svc.RecentExecutions(id, limit)
			if err != nil {
				fail("failed to list executions: %v", err)
			}
			if len(logs) == 0 {
				fmt.Fprintf(os.Stdout, "No executions found.\n")
				return
			}
			for _, entry := range logs {
				fmt.Fprintf(os.Stdout, "- %s  %s  %d/%d succeeded  %s\n",
					entry.ExecutionID, entry.Status,
					entry.Result.Summary.Successful, entry.Result.Summary.Total,
					entry.CreatedAt.Format("2006-01-02 15:04:05"))
			}
		},
	}
	historyCmd.Flags().Int("limit", models.MaxExecutionLogs, "Max entries to show")

	rootCmd.AddCommand(createCmd, listCmd, validateCmd, executeCmd, historyCmd)
}

// NewInvokerFromEnv builds the agent job client from the environment:
// PAYMENT_SERVICE_URL, PAYMENT_API_KEY, NETWORK (default Preprod) and
// PURCHASER_ID.
func NewInvokerFromEnv() *agent.Client {
	network := os.Getenv("NETWORK")
	if network == "" {
		network = "Preprod"
	}
	return agent.NewClient(agent.Config{
		PurchaseURL:   os.Getenv("PAYMENT_SERVICE_URL"),
		PurchaseToken: os.Getenv("PAYMENT_API_KEY"),
		Network:       network,
		PurchaserID:   os.Getenv("PURCHASER_ID"),
	}, log.GetLogger())
}

func initService(cmd *cobra.Command) (*service.WorkflowService, *internal_storage.PostgresStore) {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil {
		fail("error retrieving db flag: %v", err)
	}
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		fail("failed to initialize store: %v", err)
	}
	return service.NewWorkflowService(store, NewInvokerFromEnv(), log.GetLogger()), store
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fail("error parsing id as number: %v", err)
	}
	return id
}

func fail(format string, args ...interface{}) {
	log.GetLogger().Errorf(format, args...)
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
