package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	legacy "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiLegacyProvider uses the older generative-ai-go SDK. It is kept for
// deployments pinned to API keys or models the new SDK does not yet serve.
type GeminiLegacyProvider struct {
	Model    string
	Endpoint string // optional API endpoint override
}

var _ Provider = (*GeminiLegacyProvider)(nil)

func (p *GeminiLegacyProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := stringOpt(options, OptAPIKey, os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if p.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.Endpoint))
	}
	client, err := legacy.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	name := p.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(stringOpt(options, OptModel, name))
	model.SetTemperature(float32(floatOpt(options, OptTemperature, 0.1)))
	if systemPrompt != "" {
		model.SystemInstruction = &legacy.Content{Parts: []legacy.Part{legacy.Text(systemPrompt)}}
	}
	if boolOpt(options, OptJSON) || schemaOpt(options) != nil {
		model.ResponseMIMEType = "application/json"
	}

	fullPrompt := prompt
	if s := schemaInstruction(schemaOpt(options)); s != "" {
		fullPrompt = prompt + "\n\n" + s
	}

	resp, err := model.GenerateContent(ctx, legacy.Text(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(legacy.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (p *GeminiLegacyProvider) AdaptInstructions(raw string) string {
	return raw
}
