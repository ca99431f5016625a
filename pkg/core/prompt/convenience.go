package prompt

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	KPIExtraction string
}{
	KPIExtraction: "extraction.kpi",
}

// SchemaIDs contains all known response schema identifiers
var SchemaIDs = struct {
	KPIExtraction string
}{
	KPIExtraction: "kpi_extraction",
}

const kpiSystemPrompt = `You are a financial data extraction assistant.
Read the earnings article you are given and report four figures:
- revenue_actual: the revenue the company reported
- revenue_expected: the revenue analysts expected
- eps_actual: the earnings per share the company reported
- eps_expected: the earnings per share analysts expected

Copy each figure exactly as written in the article, including currency symbols and units
(for example "$25.18 billion" or "72 cents"). Use null for a figure the article does not state.
Do not compute, convert or guess values.
Respond with a single JSON object containing exactly these four keys and nothing else.`

const kpiUserTemplate = `Article:
"""
{{.Article}}
"""`

// KPISchemaJSON is the contract for extractor output. Each field is a string,
// a number or null; nothing else is accepted.
const KPISchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "KPI extraction",
  "type": "object",
  "properties": {
    "revenue_actual":   {"type": ["string", "number", "null"], "description": "Reported revenue, as written"},
    "revenue_expected": {"type": ["string", "number", "null"], "description": "Analyst revenue estimate, as written"},
    "eps_actual":       {"type": ["string", "number", "null"], "description": "Reported earnings per share, as written"},
    "eps_expected":     {"type": ["string", "number", "null"], "description": "Analyst EPS estimate, as written"}
  }
}`

// DefaultKPIPrompt is used when no prompt file overrides extraction.kpi.
func DefaultKPIPrompt() *PromptTemplate {
	return &PromptTemplate{
		ID:               PromptIDs.KPIExtraction,
		Name:             "Earnings KPI extraction",
		Category:         "extraction",
		Description:      "Actual and expected revenue and EPS from an earnings article",
		SystemPrompt:     kpiSystemPrompt,
		UserPromptTmpl:   kpiUserTemplate,
		ResponseSchemaID: SchemaIDs.KPIExtraction,
		Variables: []PromptVariable{
			{Name: "Article", Type: "string", Description: "Article text", Required: true},
		},
		Version: "1",
	}
}

// RegisterDefaults adds the built-in KPI prompt and schema unless files already provided them.
func (r *Registry) RegisterDefaults() {
	if _, err := r.GetPrompt(PromptIDs.KPIExtraction); err != nil {
		_ = r.Register(DefaultKPIPrompt())
	}
	if _, err := r.GetSchema(SchemaIDs.KPIExtraction); err != nil {
		_ = r.RegisterSchema(&ResponseSchema{
			ID:         SchemaIDs.KPIExtraction,
			Name:       "KPI extraction",
			JSONSchema: KPISchemaJSON,
		})
	}
}
