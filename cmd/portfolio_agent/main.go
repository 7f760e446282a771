// Package main provides the entry point for the portfolio agent: the HTTP
// API server plus the story ETL and vector index administration commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio_agent",
	Short: "Portfolio chat assistant and story retrieval engine",
	Long:  "Portfolio agent serves the chat assistant API backed by hybrid story retrieval, and provides commands to process raw story markdown and manage the vector index.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
