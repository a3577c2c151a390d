package config

import "dario.cat/mergo"

// mergeLLMProviders merges built-in and user-defined LLM provider definitions.
// User-defined providers override built-in ones with the same name.
func mergeLLMProviders(builtin, user map[string]LLMProviderConfig) map[string]*LLMProviderConfig {
	result := make(map[string]*LLMProviderConfig, len(builtin)+len(user))
	for name, provider := range builtin {
		providerCopy := provider
		result[name] = &providerCopy
	}
	for name, provider := range user {
		providerCopy := provider
		result[name] = &providerCopy
	}
	return result
}

// mergeJobConfig merges a user-provided job config over the built-in
// defaults, preserving any default field the user config left zero.
func mergeJobConfig(userJob *JobConfig) (*JobConfig, error) {
	merged := DefaultJobConfig()
	if userJob == nil {
		return merged, nil
	}
	if err := mergo.Merge(merged, userJob, mergo.WithOverride); err != nil {
		return nil, err
	}
	return merged, nil
}
