// Package config loads service configuration from environment variables,
// with optional .env file support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file when present. A missing file is not an error;
// production deployments set real environment variables.
func LoadEnv() {
	_ = godotenv.Load()
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port        int
	AdminAPIKey string
}

// NewServerConfig reads PORT (default: 8080) and ADMIN_API_KEY (optional;
// admin endpoints are disabled when unset).
func NewServerConfig() (*ServerConfig, error) {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %v", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got: %d", port)
	}

	return &ServerConfig{
		Port:        port,
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
	}, nil
}

// DatabaseConfig holds the vector store connection settings.
type DatabaseConfig struct {
	URL string
}

// NewDatabaseConfig reads DATABASE_URL. An empty URL is allowed; the service
// then runs in keyword-only search mode.
func NewDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{URL: os.Getenv("DATABASE_URL")}
}

// GeminiConfig holds the Gemini API settings.
type GeminiConfig struct {
	APIKey string
}

// NewGeminiConfig reads GEMINI_API_KEY (required).
func NewGeminiConfig() (*GeminiConfig, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required but not set")
	}
	return &GeminiConfig{APIKey: apiKey}, nil
}

// DataConfig holds the on-disk data locations.
type DataConfig struct {
	StoriesDir       string
	RawStoriesDir    string
	ContentDir       string
	ResumePath       string
	ResumeSchemaPath string
}

// NewDataConfig reads the data directory overrides, falling back to the
// repository layout defaults.
func NewDataConfig() *DataConfig {
	return &DataConfig{
		StoriesDir:       envOr("STORIES_DIR", "data/knowledge-base/stories"),
		RawStoriesDir:    envOr("RAW_STORIES_DIR", "content/stories"),
		ContentDir:       envOr("CONTENT_DIR", "content"),
		ResumePath:       envOr("RESUME_PATH", "data/knowledge-base/resume/processed-resume.json"),
		ResumeSchemaPath: os.Getenv("RESUME_SCHEMA_PATH"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
