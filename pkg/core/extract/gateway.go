// Package extract turns article text into the four KPI figures by asking an LLM
// and checking what comes back.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"kpi_extractor/pkg/core/llm"
	"kpi_extractor/pkg/core/prompt"
	"kpi_extractor/pkg/core/utils"
	"kpi_extractor/pkg/models"
)

// AgentType is the agent name the LLM manager resolves a provider for.
const AgentType = "kpi_extractor"

var (
	// ErrEmptyInput is returned for blank text. Callers are expected to check first.
	ErrEmptyInput = errors.New("no text to analyze")
	// ErrMalformedResponse means the model reply could not be read as a JSON object.
	ErrMalformedResponse = errors.New("model response is not a JSON object")
	// ErrSchemaViolation means the reply parsed but does not match the KPI schema.
	ErrSchemaViolation = errors.New("model response does not match the KPI schema")
)

// Gateway extracts the KPI record from free text.
type Gateway interface {
	Extract(ctx context.Context, text string) (*models.ExtractionResult, error)
}

// GatewayFunc adapts a plain function to Gateway.
type GatewayFunc func(ctx context.Context, text string) (*models.ExtractionResult, error)

func (f GatewayFunc) Extract(ctx context.Context, text string) (*models.ExtractionResult, error) {
	return f(ctx, text)
}

// PromptRunner sends a prompt to whichever model is configured for agentType.
// *agent.Manager satisfies it.
type PromptRunner interface {
	ExecutePrompt(ctx context.Context, agentType string, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// Config tunes the LLM gateway.
type Config struct {
	// StripHTML reduces pasted HTML to text before prompting.
	StripHTML bool
	// Timeout bounds one extraction; zero means the caller's context only.
	Timeout time.Duration
}

// LLMGateway is the production Gateway.
type LLMGateway struct {
	runner    PromptRunner
	prompt    *prompt.PromptTemplate
	schema    *jsonschema.Schema
	schemaDoc map[string]any
	cfg       Config
	log       *slog.Logger
}

var _ Gateway = (*LLMGateway)(nil)

// NewLLMGateway wires a gateway to runner. A nil registry uses the global one; the
// built-in KPI prompt and schema are registered when the registry lacks them.
func NewLLMGateway(runner PromptRunner, registry *prompt.Registry, cfg Config, logger *slog.Logger) (*LLMGateway, error) {
	if runner == nil {
		return nil, errors.New("extract: prompt runner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = prompt.Get()
	}
	registry.RegisterDefaults()

	pt, err := registry.GetPrompt(prompt.PromptIDs.KPIExtraction)
	if err != nil {
		return nil, err
	}
	schemaID := pt.ResponseSchemaID
	if schemaID == "" {
		schemaID = prompt.SchemaIDs.KPIExtraction
	}
	rs, err := registry.GetSchema(schemaID)
	if err != nil {
		return nil, err
	}

	schema, doc, err := compileSchema(schemaID, rs.JSONSchema)
	if err != nil {
		return nil, err
	}

	return &LLMGateway{
		runner:    runner,
		prompt:    pt,
		schema:    schema,
		schemaDoc: doc,
		cfg:       cfg,
		log:       logger,
	}, nil
}

func compileSchema(id, src string) (*jsonschema.Schema, map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		return nil, nil, fmt.Errorf("parse schema %s: %w", id, err)
	}
	name := id + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		return nil, nil, fmt.Errorf("add schema %s: %w", id, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, nil, fmt.Errorf("compile schema %s: %w", id, err)
	}
	return schema, doc, nil
}

// Extract runs one extraction. Failures are returned, never retried.
func (g *LLMGateway) Extract(ctx context.Context, text string) (*models.ExtractionResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	article := text
	if g.cfg.StripHTML && LooksLikeHTML(text) {
		plain, err := PlainText(text)
		if err != nil {
			g.log.Warn("extract.html_strip_failed", "req_id", rid, "error", err)
		} else if plain != "" {
			g.log.Debug("extract.html_stripped", "req_id", rid, "before", len(text), "after", len(plain))
			article = plain
		}
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	user, err := prompt.RenderUserPrompt(g.prompt, prompt.Vars{"Article": article})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}
	if user == "" {
		user = article
	}

	g.log.Info("extract.start", "req_id", rid, "text_len", len(article))

	raw, err := g.runner.ExecutePrompt(ctx, AgentType, user, g.prompt.SystemPrompt, map[string]interface{}{
		llm.OptJSON:   true,
		llm.OptSchema: g.schemaDoc,
	})
	if err != nil {
		g.log.Error("extract.llm_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	result, err := g.decode(raw)
	if err != nil {
		g.log.Error("extract.invalid_response",
			"req_id", rid, "error", err, "raw", truncate(raw, 500),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	g.log.Info("extract.ok",
		"req_id", rid,
		"revenue_actual", result.RevenueActual.String(),
		"revenue_expected", result.RevenueExpected.String(),
		"eps_actual", result.EPSActual.String(),
		"eps_expected", result.EPSExpected.String(),
		"empty", result.Empty(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// decode checks the model reply at the boundary: it must be a JSON object whose
// KPI fields are strings, numbers or null.
func (g *LLMGateway) decode(raw string) (*models.ExtractionResult, error) {
	cleaned := utils.CleanMarkdown(raw)

	var obj map[string]any
	normalized, err := utils.SmartParse(cleaned, &obj)
	if err != nil || obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(cleaned, 80))
	}

	if err := g.schema.Validate(obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(normalized), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
