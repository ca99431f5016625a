// Command extract runs the KPI extraction on one article from the terminal.
//
//	extract [-in file] [-sample] [-csv out.csv] [-xlsx out.xlsx] [-provider name]
//
// With neither -in nor -sample the article is read from stdin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"kpi_extractor/pkg/core/agent"
	"kpi_extractor/pkg/core/extract"
	"kpi_extractor/pkg/core/prompt"
	"kpi_extractor/pkg/core/report"
	"kpi_extractor/pkg/core/sanitize"
	"kpi_extractor/pkg/core/session"
	"kpi_extractor/pkg/core/settings"
	"kpi_extractor/pkg/models"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitWarning = 2
)

type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	newGateway func(provider string) (extract.Gateway, error)
}

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		newGateway: func(provider string) (extract.Gateway, error) {
			return newGateway(settings.Load(), provider, logger)
		},
	}
	os.Exit(a.run(context.Background(), os.Args[1:]))
}

func newGateway(cfg *settings.Settings, provider string, logger *slog.Logger) (extract.Gateway, error) {
	if err := prompt.LoadFromDirectory(cfg.ResourcesDir, logger); err != nil {
		logger.Warn("prompt.load_failed", "dir", cfg.ResourcesDir, "error", err)
	}

	agentCfg, err := agent.LoadConfig(cfg.ModelsConfig)
	if err != nil {
		return nil, err
	}
	if provider != "" {
		if agentCfg.Agents == nil {
			agentCfg.Agents = map[string]agent.AgentConfig{}
		}
		ac := agentCfg.Agents[extract.AgentType]
		ac.Provider = provider
		agentCfg.Agents[extract.AgentType] = ac
	}

	mgr := agent.NewManager(agentCfg, logger)
	if provider != "" && mgr.GetProviderByName(provider) == nil {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", provider, strings.Join(mgr.Available(), ", "))
	}

	return extract.NewLLMGateway(mgr, prompt.Get(), extract.Config{
		StripHTML: cfg.StripHTML,
		Timeout:   cfg.ExtractTimeout,
	}, logger)
}

func (a *app) run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	in := fs.String("in", "", "read the article from this file instead of stdin")
	sample := fs.Bool("sample", false, "use the built-in sample article")
	csvOut := fs.String("csv", "", "also write the table as CSV to this path")
	xlsxOut := fs.String("xlsx", "", "also write the table as an Excel workbook to this path")
	provider := fs.String("provider", "", "LLM provider to use for this run")
	if err := fs.Parse(args); err != nil {
		return exitWarning
	}

	text, err := a.readInput(*in, *sample)
	if err != nil {
		fmt.Fprintf(a.stderr, "failed to read input: %v\n", err)
		return exitFailure
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintf(a.stderr, "⚠ %s\n", session.ErrBlankInput)
		return exitWarning
	}

	gw, err := a.newGateway(*provider)
	if err != nil {
		fmt.Fprintf(a.stderr, "⚠ %s\n", &session.ExtractionError{Cause: err})
		return exitFailure
	}

	result, err := gw.Extract(ctx, text)
	if errors.Is(err, extract.ErrEmptyInput) {
		fmt.Fprintf(a.stderr, "⚠ %s\n", session.ErrBlankInput)
		return exitWarning
	}
	if err == nil && result == nil {
		err = errors.New("extractor returned no data")
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "⚠ %s\n", &session.ExtractionError{Cause: err})
		return exitFailure
	}

	printTable(a.stdout, result)

	if *csvOut != "" {
		if err := writeFile(*csvOut, result.Rows(), report.CSV); err != nil {
			fmt.Fprintln(a.stderr, err)
			return exitFailure
		}
	}
	if *xlsxOut != "" {
		if err := writeFile(*xlsxOut, result.Rows(), report.XLSX); err != nil {
			fmt.Fprintln(a.stderr, err)
			return exitFailure
		}
	}
	return exitOK
}

func (a *app) readInput(path string, sample bool) (string, error) {
	switch {
	case sample:
		return session.SampleText, nil
	case path != "":
		data, err := os.ReadFile(path)
		return string(data), err
	default:
		data, err := io.ReadAll(a.stdin)
		return string(data), err
	}
}

// printTable writes the comparison table followed by the charted numbers.
func printTable(w io.Writer, r *models.ExtractionResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(report.Header, "\t")+"\tChart (est / act)")
	for _, row := range r.Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g / %g\n",
			row.Measure, row.Estimated, row.Actual,
			sanitize.Float(row.Estimated), sanitize.Float(row.Actual))
	}
	tw.Flush()
}

func writeFile(path string, rows []models.ComparisonRow, build func([]models.ComparisonRow) ([]byte, error)) error {
	data, err := build(rows)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
