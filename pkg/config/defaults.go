package config

// defaultAutoresponseSentence is the fixed autoresponse filtered verbatim by
// the ingest validator (SPEC_FULL ยง6). Exact match, case-sensitive.
const defaultAutoresponseSentence = `Thank you for reaching out! Did you know that you can now dial *977# to report a power outage or get your last three tokens instantly?`

// defaultLLMProviders seeds the two supported adapters. AI_SERVICE selects
// which one is active; both entries stay available so a deployment can flip
// AI_SERVICE without editing YAML.
func defaultLLMProviders() map[string]LLMProviderConfig {
	return map[string]LLMProviderConfig{
		"gemini": {
			Type:      LLMProviderGemini,
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GOOGLE_API_KEY",
		},
		"openai": {
			Type:      LLMProviderOpenAI,
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
	}
}
