package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roylo/portfolio/internal/config"
	"github.com/roylo/portfolio/internal/observability"
	"github.com/roylo/portfolio/internal/search"
)

var (
	searchLimit       int
	searchKeywordOnly bool
	searchVerbose     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a hybrid search query against the story corpus",
	Long:  `Run one retrieval query and print the ranked results. Useful for debugging scoring and fallback behavior without the HTTP server.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "Maximum results to return")
	searchCmd.Flags().BoolVar(&searchKeywordOnly, "keyword-only", false, "Skip the vector store even when configured")
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Print full story details for each result")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	query := strings.Join(args, " ")

	corpus, _, err := loadCorpus()
	if err != nil {
		return err
	}

	hybrid := newHybrid(corpus, nil)
	if !searchKeywordOnly {
		if geminiCfg, err := config.NewGeminiConfig(); err == nil {
			store, cleanup, err := newVectorStore(ctx, geminiCfg.APIKey)
			if err != nil {
				log.Printf("vector store unavailable, searching keyword-only: %v", err)
			} else if store != nil {
				defer cleanup()
				hybrid = newHybrid(corpus, store)
			}
		}
	}

	opts := search.DefaultOptions()
	opts.Limit = searchLimit
	opts.UseVector = !searchKeywordOnly

	results, err := hybrid.SearchStories(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSearchResults(results)
	if searchVerbose {
		for i := range results {
			printer.PrintStory(&results[i].Story)
		}
	}
	return nil
}
