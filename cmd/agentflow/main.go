package main

import (
	"fmt"
	"os"

	"github.com/ignatij/agentflow/internal/cli"
	internal_http "github.com/ignatij/agentflow/internal/http"
	"github.com/ignatij/agentflow/internal/log"
	internal_storage "github.com/ignatij/agentflow/internal/storage"
	"github.com/ignatij/agentflow/pkg/service"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "agentflow"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agentflow HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		dbConnStr, _ := cmd.Flags().GetString("db")
		port, _ := cmd.Flags().GetString("port")
		store, err := internal_storage.InitStore(dbConnStr)
		if err != nil {
			log.GetLogger().Errorf("Failed to initialize store: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		svc := service.NewWorkflowService(store, cli.NewInvokerFromEnv(), log.GetLogger())
		if err := internal_http.StartServer(port, svc); err != nil {
			log.GetLogger().Errorf("Server stopped: %v", err)
			os.Exit(1)
		}
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.GetLogger().Debugf("No .env file found: %v", err)
	}
	rootCmd.PersistentFlags().String("db", os.Getenv("DATABASE_URL"), "Database connection string")
	serveCmd.Flags().String("port", "8080", "HTTP port")
	rootCmd.AddCommand(serveCmd)
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
