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

type QwenProvider struct {
	BaseURL string // default https://dashscope.aliyuncs.com
	Client  *http.Client
	Logger  *slog.Logger
}

var _ Provider = (*QwenProvider)(nil)

const qwenGenerationPath = "/api/v1/services/aigc/text-generation/generation"

func (p *QwenProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	// DASHSCOPE_API_KEY first, QWEN_API_KEY as a fallback
	apiKey := stringOpt(options, OptAPIKey, os.Getenv("DASHSCOPE_API_KEY"))
	if apiKey == "" {
		apiKey = os.Getenv("QWEN_API_KEY")
	}
	if apiKey == "" {
		return "", fmt.Errorf("QWEN_API_KEY_MISSING: Please set DASHSCOPE_API_KEY or QWEN_API_KEY")
	}

	base := p.BaseURL
	if base == "" {
		base = "https://dashscope.aliyuncs.com"
	}

	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": prompt},
	}
	if s := schemaInstruction(schemaOpt(options)); s != "" {
		messages = append(messages, map[string]string{"role": "system", "content": s})
	}

	parameters := map[string]interface{}{
		"result_format": "message",
		"temperature":   floatOpt(options, OptTemperature, 0),
	}
	if boolOpt(options, OptJSON) {
		parameters["response_format"] = ResponseFormat{Type: "json_object"}
	}

	// Native DashScope format
	reqBody := map[string]interface{}{
		"model":      stringOpt(options, OptModel, "qwen-max"),
		"input":      map[string]interface{}{"messages": messages},
		"parameters": parameters,
	}

	raw, status, err := sendJSON(ctx, p.Client, strings.TrimRight(base, "/")+qwenGenerationPath, reqBody, map[string]string{
		"Authorization": "Bearer " + apiKey,
	}, p.Logger)
	if err != nil {
		if status != 0 {
			return "", fmt.Errorf("qwen api returned status %d: %s", status, truncate(string(raw), 300))
		}
		return "", fmt.Errorf("qwen api call failed: %w", err)
	}

	var result struct {
		Output struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
			// some endpoints return the text directly
			Text string `json:"text"`
		} `json:"output"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("failed to decode qwen response: %w", err)
	}

	if result.Code != "" {
		return "", fmt.Errorf("qwen api error: %s - %s", result.Code, result.Message)
	}
	if len(result.Output.Choices) > 0 {
		return result.Output.Choices[0].Message.Content, nil
	}
	if result.Output.Text != "" {
		return result.Output.Text, nil
	}

	return "", fmt.Errorf("empty response from qwen api")
}

func (p *QwenProvider) AdaptInstructions(raw string) string {
	return raw
}
