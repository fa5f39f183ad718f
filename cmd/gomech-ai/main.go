// Command gomech-ai holds operator tasks for the assistant service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "gomech-ai",
	Short: "Operator tools for the GoMech AI service",
	Long: `Operator tools for the GoMech AI service.

Commands:
  migrate    - Create or update the database schema
  catalog    - Print the action catalog
  route      - Classify a message into a route
  knowledge  - Manage the knowledge base`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	knowledgeCmd.AddCommand(knowledgeIndexCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
