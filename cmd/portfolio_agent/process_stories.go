package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/roylo/portfolio/internal/config"
	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/observability"
	"github.com/roylo/portfolio/internal/processing"
	"github.com/roylo/portfolio/internal/story"
)

var (
	processInputDir  string
	processOutputDir string
	processEnhance   bool
	processVerbose   bool
)

var processStoriesCmd = &cobra.Command{
	Use:   "process-stories",
	Short: "Process raw story markdown into the categorized corpus",
	Long:  `Read raw markdown stories, extract competencies, metrics, keywords and STAR structure, optionally enhance them with the language model, and write the categorized corpus JSON files.`,
	RunE:  runProcessStories,
}

func init() {
	processStoriesCmd.Flags().StringVarP(&processInputDir, "in", "i", "", "Directory of raw story markdown (defaults to RAW_STORIES_DIR)")
	processStoriesCmd.Flags().StringVarP(&processOutputDir, "out", "o", "", "Output corpus directory (defaults to STORIES_DIR)")
	processStoriesCmd.Flags().BoolVar(&processEnhance, "enhance", false, "Enhance extraction with the language model (requires GEMINI_API_KEY)")
	processStoriesCmd.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print a corpus summary after writing")
	rootCmd.AddCommand(processStoriesCmd)
}

func runProcessStories(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dataCfg := config.NewDataConfig()
	inputDir := processInputDir
	if inputDir == "" {
		inputDir = dataCfg.RawStoriesDir
	}
	outputDir := processOutputDir
	if outputDir == "" {
		outputDir = dataCfg.StoriesDir
	}

	var client llm.Client
	if processEnhance {
		geminiCfg, err := config.NewGeminiConfig()
		if err != nil {
			return err
		}
		geminiClient, err := llm.NewGeminiClient(ctx, nil, geminiCfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() {
			if err := geminiClient.Close(); err != nil {
				log.Printf("failed to close LLM client: %v", err)
			}
		}()
		client = geminiClient
	}

	processor := processing.NewProcessor(client)
	stories, err := processor.ProcessDir(ctx, inputDir)
	if err != nil {
		return fmt.Errorf("failed to process stories: %w", err)
	}
	if len(stories) == 0 {
		return fmt.Errorf("no stories found in %s", inputDir)
	}

	if err := processing.WriteCorpus(outputDir, stories); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	log.Printf("wrote %d stories to %s", len(stories), outputDir)

	if processVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintCorpusSummary(story.NewCorpus(stories))
	}
	return nil
}
