package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/roylo/portfolio/internal/config"
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Re-embed the story corpus into the vector store",
	Long:  `Clear the vector store and re-embed every story in the corpus. Requires DATABASE_URL and GEMINI_API_KEY.`,
	RunE:  runPopulate,
}

func init() {
	rootCmd.AddCommand(populateCmd)
}

func runPopulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	geminiCfg, err := config.NewGeminiConfig()
	if err != nil {
		return err
	}

	corpus, _, err := loadCorpus()
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

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	hybrid := newHybrid(corpus, store)
	if err := hybrid.PopulateVectorStore(ctx); err != nil {
		return err
	}

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count embeddings: %w", err)
	}
	log.Printf("vector store populated with %d stories", count)
	return nil
}
