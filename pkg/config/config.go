package config

// Config is the umbrella configuration object returned by Initialize and
// threaded through the ingest, batching, LLM adapter, and job scheduler
// components.
type Config struct {
	configDir string

	// DatabaseURL is the Postgres connection string (or discrete DB_* vars
	// resolve this at the database.LoadConfigFromEnv layer instead).
	DatabaseURL string `yaml:"database_url,omitempty"`

	// AIService selects the active entry in LLMProviders.
	AIService string `yaml:"ai_service"`

	// MaxTokensPerJob caps estimated prompt tokens per batched job (C4).
	MaxTokensPerJob int `yaml:"max_tokens_per_job"`

	// BatchSize hard-caps DailyAnalysis units per job (C4).
	BatchSize int `yaml:"batch_size"`

	// MaxFileSize is the upload size guardrail in bytes (C10).
	MaxFileSize int64 `yaml:"max_file_size"`

	// AutoresponseSentence is filtered verbatim by the ingest validator (C1).
	AutoresponseSentence string `yaml:"autoresponse_sentence"`

	// AutoresponseSubstringMatch relaxes the filter from exact-match to
	// substring containment. See DESIGN.md Open Questions.
	AutoresponseSubstringMatch bool `yaml:"autoresponse_substring_match"`

	Job          *JobConfig                   `yaml:"job,omitempty"`
	LLMProviders map[string]*LLMProviderConfig `yaml:"llm_providers,omitempty"`
}

// ConfigDir returns the configuration directory path used at load time.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ActiveLLMProvider returns the provider configuration selected by AIService.
func (c *Config) ActiveLLMProvider() (*LLMProviderConfig, error) {
	provider, ok := c.LLMProviders[c.AIService]
	if !ok {
		return nil, NewValidationError("llm_provider", c.AIService, "ai_service", ErrLLMProviderNotFound)
	}
	return provider, nil
}
