package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_DefaultsOnly(t *testing.T) {
	cfg, err := Initialize(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AIService)
	assert.Equal(t, 16000, cfg.MaxTokensPerJob)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, int64(52428800), cfg.MaxFileSize)
	assert.Equal(t, defaultAutoresponseSentence, cfg.AutoresponseSentence)
	assert.Equal(t, 2, cfg.Job.AIConcurrency)
	require.Contains(t, cfg.LLMProviders, "openai")
}

func TestInitialize_YAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlContent := []byte("ai_service: openai\nbatch_size: 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "powerpulse.yaml"), yamlContent, 0o644))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AIService)
	assert.Equal(t, 5, cfg.BatchSize)
	// Untouched fields keep their built-in default.
	assert.Equal(t, 16000, cfg.MaxTokensPerJob)
}

func TestInitialize_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlContent := []byte("batch_size: 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "powerpulse.yaml"), yamlContent, 0o644))

	t.Setenv("BATCH_SIZE", "7")

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.BatchSize)
}

func TestInitialize_UnknownAIService(t *testing.T) {
	t.Setenv("AI_SERVICE", "does-not-exist")

	_, err := Initialize(context.Background(), "")
	assert.Error(t, err)
}
