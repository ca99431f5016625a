package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Registered provider names.
const (
	NameOpenAI       = "openai"
	NameGemini       = "gemini"
	NameGeminiLegacy = "gemini-legacy"
	NameDeepSeek     = "deepseek"
	NameQwen         = "qwen"
)

// Option keys understood by the providers.
const (
	// OptModel overrides the provider's default model name.
	OptModel = "model"
	// OptAPIKey overrides the key taken from the environment.
	OptAPIKey = "api_key"
	// OptJSON asks for a bare JSON object in the reply (bool).
	OptJSON = "json"
	// OptSchema carries a JSON Schema document (map[string]any) describing the reply.
	OptSchema = "json_schema"
	// OptTemperature sets the sampling temperature (float64).
	OptTemperature = "temperature"
)

func stringOpt(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

func boolOpt(options map[string]interface{}, key string) bool {
	val, _ := options[key].(bool)
	return val
}

func floatOpt(options map[string]interface{}, key string, fallback float64) float64 {
	switch v := options[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return fallback
}

func schemaOpt(options map[string]interface{}) map[string]any {
	s, _ := options[OptSchema].(map[string]any)
	return s
}
