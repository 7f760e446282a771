package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/roylo/portfolio/internal/config"
)

var clearVectorsCmd = &cobra.Command{
	Use:   "clear-vectors",
	Short: "Remove every embedding from the vector store",
	RunE:  runClearVectors,
}

func init() {
	rootCmd.AddCommand(clearVectorsCmd)
}

func runClearVectors(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	geminiCfg, err := config.NewGeminiConfig()
	if err != nil {
		return err
	}

	store, cleanup, err := newVectorStore(ctx, geminiCfg.APIKey)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	defer cleanup()

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear vector store: %w", err)
	}
	log.Println("vector store cleared")
	return nil
}
