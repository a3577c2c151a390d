package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig mirrors the optional powerpulse.yaml file. Every field is
// optional; anything left unset falls back to a built-in default and can
// still be supplied via environment variable (see applyEnvOverrides).
type YAMLConfig struct {
	DatabaseURL                string                        `yaml:"database_url,omitempty"`
	AIService                  string                        `yaml:"ai_service,omitempty"`
	MaxTokensPerJob            int                           `yaml:"max_tokens_per_job,omitempty"`
	BatchSize                  int                           `yaml:"batch_size,omitempty"`
	MaxFileSize                int64                         `yaml:"max_file_size,omitempty"`
	AutoresponseSentence       string                        `yaml:"autoresponse_sentence,omitempty"`
	AutoresponseSubstringMatch *bool                         `yaml:"autoresponse_substring_match,omitempty"`
	Job                        *JobConfig                    `yaml:"job,omitempty"`
	LLMProviders               map[string]LLMProviderConfig  `yaml:"llm_providers,omitempty"`
}

// Initialize loads, merges, validates, and returns ready-to-use
// configuration. configDir may be empty; a missing powerpulse.yaml is not an
// error, since every setting has an environment-variable and built-in
// fallback (SPEC_FULL ยง6).
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration initialized",
		"ai_service", cfg.AIService,
		"max_tokens_per_job", cfg.MaxTokensPerJob,
		"batch_size", cfg.BatchSize,
		"ai_concurrency", cfg.Job.AIConcurrency)

	return cfg, nil
}

func load(configDir string) (*Config, error) {
	yamlCfg, err := loadYAML(configDir)
	if err != nil {
		return nil, err
	}

	jobCfg, err := mergeJobConfig(yamlCfg.Job)
	if err != nil {
		return nil, fmt.Errorf("failed to merge job config: %w", err)
	}

	cfg := &Config{
		configDir:                  configDir,
		DatabaseURL:                yamlCfg.DatabaseURL,
		AIService:                  "gemini",
		MaxTokensPerJob:            16000,
		BatchSize:                  20,
		MaxFileSize:                52428800,
		AutoresponseSentence:       defaultAutoresponseSentence,
		AutoresponseSubstringMatch: false,
		Job:                        jobCfg,
		LLMProviders:               mergeLLMProviders(defaultLLMProviders(), yamlCfg.LLMProviders),
	}

	if yamlCfg.AIService != "" {
		cfg.AIService = yamlCfg.AIService
	}
	if yamlCfg.MaxTokensPerJob > 0 {
		cfg.MaxTokensPerJob = yamlCfg.MaxTokensPerJob
	}
	if yamlCfg.BatchSize > 0 {
		cfg.BatchSize = yamlCfg.BatchSize
	}
	if yamlCfg.MaxFileSize > 0 {
		cfg.MaxFileSize = yamlCfg.MaxFileSize
	}
	if yamlCfg.AutoresponseSentence != "" {
		cfg.AutoresponseSentence = yamlCfg.AutoresponseSentence
	}
	if yamlCfg.AutoresponseSubstringMatch != nil {
		cfg.AutoresponseSubstringMatch = *yamlCfg.AutoresponseSubstringMatch
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadYAML(configDir string) (*YAMLConfig, error) {
	cfg := &YAMLConfig{}
	if configDir == "" {
		return cfg, nil
	}

	path := filepath.Join(configDir, "powerpulse.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	data = ExpandEnv(data)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return cfg, nil
}

// applyEnvOverrides lets every SPEC_FULL ยง6 config key be set purely through
// the environment, with no powerpulse.yaml present.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("AI_SERVICE"); v != "" {
		cfg.AIService = v
	}
	if v, ok := envInt("MAX_TOKENS_PER_JOB"); ok {
		cfg.MaxTokensPerJob = v
	}
	if v, ok := envInt("BATCH_SIZE"); ok {
		cfg.BatchSize = v
	}
	if v, ok := envInt64("MAX_FILE_SIZE"); ok {
		cfg.MaxFileSize = v
	}
	if v := os.Getenv("AUTORESPONSE_SENTENCE"); v != "" {
		cfg.AutoresponseSentence = v
	}
	if v, ok := envInt("AI_CONCURRENCY"); ok {
		cfg.Job.AIConcurrency = v
	}
	if v, ok := envDuration("MIN_INTER_CALL_DELAY"); ok {
		cfg.Job.MinInterCallDelay = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring invalid integer env override", "key", key, "value", v, "error", err)
		return 0, false
	}
	return n, true
}

func envInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("ignoring invalid integer env override", "key", key, "value", v, "error", err)
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if n, atoiErr := strconv.Atoi(v); atoiErr == nil {
			return time.Duration(n) * time.Second, true
		}
		slog.Warn("ignoring invalid duration env override", "key", key, "value", v, "error", err)
		return 0, false
	}
	return d, true
}
