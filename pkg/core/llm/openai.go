package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// OpenAIProvider talks to any OpenAI-compatible chat/completions endpoint.
type OpenAIProvider struct {
	BaseURL string // default https://api.openai.com/v1
	Model   string // default gpt-4o-mini
	Client  *http.Client
	Logger  *slog.Logger
}

var _ Provider = (*OpenAIProvider)(nil)

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := stringOpt(options, OptAPIKey, os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY_MISSING: Please set OPENAI_API_KEY env var")
	}

	base := p.BaseURL
	if base == "" {
		base = os.Getenv("OPENAI_BASE_URL")
	}
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	model := p.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	model = stringOpt(options, OptModel, model)

	messages := []Message{
		{Content: systemPrompt, Role: "system"},
		{Content: prompt, Role: "user"},
	}
	if s := schemaInstruction(schemaOpt(options)); s != "" {
		messages = append(messages, Message{Content: s, Role: "system"})
	}

	body := map[string]any{
		"model":       model,
		"temperature": floatOpt(options, OptTemperature, 0),
		"messages":    messages,
	}
	if boolOpt(options, OptJSON) {
		body["response_format"] = ResponseFormat{Type: "json_object"}
	}

	endpoint := strings.TrimRight(base, "/") + "/chat/completions"
	raw, status, err := sendJSON(ctx, p.Client, endpoint, body, map[string]string{
		"Authorization": "Bearer " + apiKey,
	}, p.Logger)
	if err != nil {
		if status != 0 {
			return "", fmt.Errorf("OPENAI_API_ERROR: status=%d body=%s", status, truncate(string(raw), 300))
		}
		return "", fmt.Errorf("OPENAI_API_CALL_ERROR: %w", err)
	}

	var cc ChatCompletionResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("OPENAI_UNMARSHAL_ERROR: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("OPENAI_NO_CHOICES: %s", truncate(string(raw), 300))
	}
	return cc.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}
