// Package prompt keeps the LLM prompts and response schemas outside the code.
// Files under resources/ are loaded at startup; built-in copies cover a missing
// directory.
package prompt

// PromptTemplate is one prompt definition as stored in resources/prompts.
type PromptTemplate struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Description      string           `json:"description"`
	SystemPrompt     string           `json:"system_prompt"`
	UserPromptTmpl   string           `json:"user_prompt_template"`
	ResponseSchemaID string           `json:"response_schema_ref"`
	Variables        []PromptVariable `json:"variables"`
	Version          string           `json:"version"`
}

// PromptVariable declares one template input. Optional inputs fall back to Default.
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default"`
}

// ResponseSchema is a JSON Schema document, kept as text.
type ResponseSchema struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	JSONSchema  string `json:"json_schema"`
}

// Vars are the values a user prompt template is rendered with.
type Vars map[string]any
