package config

import "time"

// LLMProviderType identifies which concrete adapter backs an LLMProviderConfig.
type LLMProviderType string

const (
	LLMProviderGemini LLMProviderType = "gemini"
	LLMProviderOpenAI LLMProviderType = "openai"
)

// LLMProviderConfig describes one configured LLM backend. AI_SERVICE selects
// which entry in Config.LLMProviders is active.
type LLMProviderConfig struct {
	Type      LLMProviderType `yaml:"type" validate:"required"`
	Model     string          `yaml:"model" validate:"required"`
	APIKeyEnv string          `yaml:"api_key_env,omitempty"`
	BaseURL   string          `yaml:"base_url,omitempty"`
	Timeout   time.Duration   `yaml:"timeout,omitempty"`
}

// JobConfig contains job scheduler (C6) tunables.
type JobConfig struct {
	AIConcurrency     int           `yaml:"ai_concurrency"`
	MinInterCallDelay time.Duration `yaml:"min_inter_call_delay"`
	LLMCallTimeout    time.Duration `yaml:"llm_call_timeout"`
	UploadTimeout     time.Duration `yaml:"upload_timeout"`
	RetryBaseDelay    time.Duration `yaml:"retry_base_delay"`
	RetryMaxAttempts  int           `yaml:"retry_max_attempts"`
	OrphanThreshold   time.Duration `yaml:"orphan_threshold"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// DefaultJobConfig returns the built-in job scheduler defaults (SPEC_FULL ยง5).
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		AIConcurrency:     2,
		MinInterCallDelay: 1 * time.Second,
		LLMCallTimeout:    60 * time.Second,
		UploadTimeout:     30 * time.Minute,
		RetryBaseDelay:    1 * time.Second,
		RetryMaxAttempts:  3,
		OrphanThreshold:   5 * time.Minute,
		HeartbeatInterval: 30 * time.Second,
	}
}
