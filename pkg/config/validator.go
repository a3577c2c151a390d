package config

import "fmt"

// Validator validates configuration comprehensively with clear error messages
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast: stops at first error)
func (v *Validator) ValidateAll() error {
	if err := v.validateLLM(); err != nil {
		return fmt.Errorf("llm configuration failed: %w", err)
	}
	if err := v.validateJob(); err != nil {
		return fmt.Errorf("job configuration failed: %w", err)
	}
	if err := v.validateBatching(); err != nil {
		return fmt.Errorf("batching configuration failed: %w", err)
	}
	return nil
}

func (v *Validator) validateLLM() error {
	c := v.cfg
	if c.AIService == "" {
		return NewValidationError("config", "ai_service", "", ErrMissingRequiredField)
	}
	provider, ok := c.LLMProviders[c.AIService]
	if !ok {
		return NewValidationError("config", "ai_service", "", ErrLLMProviderNotFound)
	}
	if provider.Model == "" {
		return NewValidationError("llm_provider", c.AIService, "model", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateJob() error {
	j := v.cfg.Job
	if j == nil {
		return fmt.Errorf("job configuration is nil")
	}
	if j.AIConcurrency < 1 {
		return fmt.Errorf("ai_concurrency must be at least 1, got %d", j.AIConcurrency)
	}
	if j.MinInterCallDelay < 0 {
		return fmt.Errorf("min_inter_call_delay must be non-negative, got %v", j.MinInterCallDelay)
	}
	if j.LLMCallTimeout <= 0 {
		return fmt.Errorf("llm_call_timeout must be positive, got %v", j.LLMCallTimeout)
	}
	if j.UploadTimeout <= 0 {
		return fmt.Errorf("upload_timeout must be positive, got %v", j.UploadTimeout)
	}
	if j.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry_max_attempts must be at least 1, got %d", j.RetryMaxAttempts)
	}
	return nil
}

func (v *Validator) validateBatching() error {
	c := v.cfg
	if c.MaxTokensPerJob < 1 {
		return fmt.Errorf("max_tokens_per_job must be positive, got %d", c.MaxTokensPerJob)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.MaxFileSize < 1 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.AutoresponseSentence == "" {
		return NewValidationError("config", "autoresponse_sentence", "", ErrMissingRequiredField)
	}
	return nil
}
