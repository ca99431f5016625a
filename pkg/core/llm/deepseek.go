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

type DeepSeekProvider struct {
	BaseURL string // default https://api.deepseek.com
	Client  *http.Client
	Logger  *slog.Logger
}

var _ Provider = (*DeepSeekProvider)(nil)

// DeepSeekRequest is the chat/completions body DeepSeek accepts.
type DeepSeekRequest struct {
	Messages         []Message      `json:"messages"`
	Model            string         `json:"model"`
	Thinking         *ThinkingParam `json:"thinking,omitempty"`
	FrequencyPenalty float64        `json:"frequency_penalty"`
	MaxTokens        int            `json:"max_tokens"`
	PresencePenalty  float64        `json:"presence_penalty"`
	ResponseFormat   ResponseFormat `json:"response_format"`
	Stream           bool           `json:"stream"`
	Temperature      float64        `json:"temperature"`
	TopP             float64        `json:"top_p"`
}

type ThinkingParam struct {
	Type string `json:"type"`
}

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := stringOpt(options, OptAPIKey, os.Getenv("DEEPSEEK_API_KEY"))
	if apiKey == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY_MISSING: Please set DEEPSEEK_API_KEY env var")
	}

	base := p.BaseURL
	if base == "" {
		base = "https://api.deepseek.com"
	}

	messages := []Message{
		{Content: systemPrompt, Role: "system"},
		{Content: prompt, Role: "user"},
	}
	if s := schemaInstruction(schemaOpt(options)); s != "" {
		messages = append(messages, Message{Content: s, Role: "system"})
	}

	format := "text"
	if boolOpt(options, OptJSON) {
		format = "json_object"
	}

	reqBody := DeepSeekRequest{
		Messages:       messages,
		Model:          stringOpt(options, OptModel, "deepseek-chat"),
		Thinking:       &ThinkingParam{Type: "disabled"},
		MaxTokens:      1024,
		ResponseFormat: ResponseFormat{Type: format},
		Temperature:    floatOpt(options, OptTemperature, 0),
		TopP:           1.0,
	}

	raw, status, err := sendJSON(ctx, p.Client, strings.TrimRight(base, "/")+"/chat/completions", reqBody, map[string]string{
		"Authorization": "Bearer " + apiKey,
	}, p.Logger)
	if err != nil {
		if status != 0 {
			return "", fmt.Errorf("DEEPSEEK_API_ERROR: status=%d found=%s", status, truncate(string(raw), 300))
		}
		return "", fmt.Errorf("DEEPSEEK_API_CALL_ERROR: %w", err)
	}

	var response ChatCompletionResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return "", fmt.Errorf("DEEPSEEK_UNMARSHAL_ERROR: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("DEEPSEEK_NO_CHOICES: %s", truncate(string(raw), 300))
	}

	return response.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw
}
