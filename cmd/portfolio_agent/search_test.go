package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roylo/portfolio/internal/story"
)

// writeTestCorpus writes a minimal corpus directory for CLI tests.
func writeTestCorpus(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	stories := []story.Story{
		{
			Slug:           "chat-platform",
			Title:          "Scaling the Chat Platform",
			Summary:        "Scaled a chat platform to enterprise customers",
			Company:        "BotBonnie",
			Role:           "CEO",
			Competencies:   []string{"leadership", "growth"},
			Keywords:       []string{"enterprise", "platform"},
			ImpactLevel:    story.ImpactHigh,
			SeniorityLevel: story.SeniorityExecutive,
		},
	}
	data, err := json.Marshal(stories)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leadership.json"), data, 0o644))
	return dir
}

func TestSearchCommand_KeywordOnly(t *testing.T) {
	binaryPath := getBinaryPath(t)
	corpusDir := writeTestCorpus(t)

	cmd := exec.Command(binaryPath, "search", "enterprise", "platform", "--keyword-only")
	cmd.Env = append(os.Environ(), "STORIES_DIR="+corpusDir)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "output: %s", output)

	assert.Contains(t, string(output), "SEARCH RESULTS")
	assert.Contains(t, string(output), "Scaling the Chat Platform")
	assert.Contains(t, string(output), "keyword_only")
}

func TestSearchCommand_NoMatches(t *testing.T) {
	binaryPath := getBinaryPath(t)
	corpusDir := writeTestCorpus(t)

	cmd := exec.Command(binaryPath, "search", "zzzunrelatedzzz", "--keyword-only")
	cmd.Env = append(os.Environ(), "STORIES_DIR="+corpusDir)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "output: %s", output)

	assert.Contains(t, string(output), "No matching stories found")
}

func TestSearchCommand_MissingQuery(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "search")
	_, err := cmd.CombinedOutput()

	assert.Error(t, err)
}

func TestStatsCommand_KeywordOnly(t *testing.T) {
	binaryPath := getBinaryPath(t)
	corpusDir := writeTestCorpus(t)

	cmd := exec.Command(binaryPath, "stats")
	cmd.Env = append(os.Environ(), "STORIES_DIR="+corpusDir, "GEMINI_API_KEY=", "DATABASE_URL=")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "output: %s", output)

	assert.Contains(t, string(output), "SEARCH INDEX STATS")
	assert.Contains(t, string(output), "Stories:      1")
}
