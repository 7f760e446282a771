package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/roylo/portfolio/internal/chat"
	"github.com/roylo/portfolio/internal/config"
	"github.com/roylo/portfolio/internal/content"
	"github.com/roylo/portfolio/internal/llm"
	"github.com/roylo/portfolio/internal/resume"
	"github.com/roylo/portfolio/internal/schemas"
	"github.com/roylo/portfolio/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio API server",
	Long:  `Start an HTTP server that exposes the chat assistant, story search, and content endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	serverCfg, err := config.NewServerConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		serverCfg.Port = servePort
	}

	geminiCfg, err := config.NewGeminiConfig()
	if err != nil {
		return err
	}

	corpus, dataCfg, err := loadCorpus()
	if err != nil {
		return err
	}
	log.Printf("loaded %d stories", corpus.Len())

	// The résumé enriches chat responses but is not required to serve.
	r, err := resume.Load(dataCfg.ResumePath, schemas.ResolveSchemaPath("schemas/resume.schema.json"))
	if err != nil {
		log.Printf("resume unavailable, chat runs without profile context: %v", err)
	}

	client, err := llm.NewGeminiClient(ctx, nil, geminiCfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("failed to close LLM client: %v", err)
		}
	}()

	store, cleanup, err := newVectorStore(ctx, geminiCfg.APIKey)
	switch {
	case err != nil:
		// Searchable without vectors; log and continue keyword-only.
		log.Printf("vector store unavailable, serving keyword-only: %v", err)
		store = nil
	case store == nil:
		log.Println("DATABASE_URL not set, serving keyword-only search")
	default:
		defer cleanup()
	}

	hybrid := newHybrid(corpus, store)
	assistant := chat.NewAssistant(hybrid, r, client)

	srv := server.New(server.Config{
		Port:        serverCfg.Port,
		AdminAPIKey: serverCfg.AdminAPIKey,
		Assistant:   assistant,
		Search:      hybrid,
		Content:     content.NewStore(dataCfg.ContentDir),
		Corpus:      corpus,
	})
	return srv.Start()
}
