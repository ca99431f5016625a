package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	Model   string // e.g. "gemini-2.0-flash"
	BaseURL string // optional endpoint override
	Client  *http.Client
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request to the Gemini API using the official GenAI SDK.
// A JSON Schema passed under OptSchema is forwarded as the response schema.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := stringOpt(options, OptAPIKey, os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	model = stringOpt(options, OptModel, model)

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.Client,
	}
	if p.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(floatOpt(options, OptTemperature, 0.1))),
	}
	if boolOpt(options, OptJSON) {
		config.ResponseMIMEType = "application/json"
	}
	if s := schemaOpt(options); s != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = GeminiSchema(s)
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}

// GeminiSchema converts the subset of JSON Schema used by our prompts into a genai.Schema.
// A type list such as ["string","null"] becomes the first non-null type marked nullable.
func GeminiSchema(js map[string]any) *genai.Schema {
	if js == nil {
		return nil
	}
	s := &genai.Schema{}
	if d, ok := js["description"].(string); ok {
		s.Description = d
	}

	switch t := js["type"].(type) {
	case string:
		s.Type = geminiType(t)
	case []any:
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				s.Nullable = genai.Ptr(true)
				continue
			}
			if s.Type == "" {
				s.Type = geminiType(name)
			}
		}
	case []string:
		for _, name := range t {
			if name == "null" {
				s.Nullable = genai.Ptr(true)
				continue
			}
			if s.Type == "" {
				s.Type = geminiType(name)
			}
		}
	}

	if props, ok := js["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		keys := make([]string, 0, len(props))
		for k, v := range props {
			if m, ok := v.(map[string]any); ok {
				s.Properties[k] = GeminiSchema(m)
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		s.PropertyOrdering = keys
	}
	if items, ok := js["items"].(map[string]any); ok {
		s.Items = GeminiSchema(items)
	}
	switch req := js["required"].(type) {
	case []string:
		s.Required = append([]string(nil), req...)
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s
}

func geminiType(name string) genai.Type {
	switch name {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
