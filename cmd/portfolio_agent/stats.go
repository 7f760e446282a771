package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/roylo/portfolio/internal/config"
	"github.com/roylo/portfolio/internal/observability"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show search index statistics",
	Long:  `Report story counts and availability for both the keyword store and the vector store.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	corpus, _, err := loadCorpus()
	if err != nil {
		return err
	}

	geminiCfg, err := config.NewGeminiConfig()
	if err != nil {
		// Stats still work keyword-only without an API key.
		log.Printf("skipping vector store: %v", err)
		geminiCfg = &config.GeminiConfig{}
	}

	hybrid := newHybrid(corpus, nil)
	if geminiCfg.APIKey != "" {
		store, cleanup, err := newVectorStore(ctx, geminiCfg.APIKey)
		if err != nil {
			log.Printf("vector store unavailable: %v", err)
		} else if store != nil {
			defer cleanup()
			hybrid = newHybrid(corpus, store)
		}
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintStats(hybrid.GetStats(ctx))
	return nil
}
