package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// LoadFromDirectory loads baseDir into the global registry. Layout:
//
//	baseDir/prompts/<category>/<name>.json   prompt "<category>.<name>"
//	baseDir/schemas/<name>.json              schema "<name>", file body is the schema
func LoadFromDirectory(baseDir string, logger *slog.Logger) error {
	return Get().LoadDirectory(baseDir, logger)
}

// LoadDirectory loads baseDir into r. A missing prompts directory is an error;
// schemas are optional.
func (r *Registry) LoadDirectory(baseDir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	promptDir := filepath.Join(baseDir, "prompts")
	if _, err := os.Stat(promptDir); err != nil {
		return fmt.Errorf("prompts directory: %w", err)
	}
	if err := walkJSON(promptDir, func(rel string, data []byte) error {
		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return err
		}
		if pt.ID == "" {
			pt.ID = strings.ReplaceAll(rel, string(filepath.Separator), ".")
		}
		if pt.Category == "" {
			pt.Category = categoryOf(rel)
		}
		return r.Register(&pt)
	}); err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	schemaDir := filepath.Join(baseDir, "schemas")
	if err := walkJSON(schemaDir, func(rel string, data []byte) error {
		if !json.Valid(data) {
			return fmt.Errorf("not valid JSON")
		}
		name := filepath.Base(rel)
		return r.RegisterSchema(&ResponseSchema{ID: name, Name: name, JSONSchema: string(data)})
	}); err != nil && !os.IsNotExist(err) {
		logger.Warn("prompt.schemas_not_loaded", "dir", schemaDir, "error", err)
	}

	logger.Info("prompt.loaded", "prompts", r.Count(), "schemas", r.schemas.size(), "dir", baseDir)
	return nil
}

// walkJSON calls fn for every .json file under dir with its path relative to
// dir, extension stripped.
func walkJSON(dir string, fn func(rel string, data []byte) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if err := fn(strings.TrimSuffix(rel, ".json"), data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	})
}

func categoryOf(rel string) string {
	if i := strings.IndexRune(rel, filepath.Separator); i > 0 {
		return rel[:i]
	}
	return "default"
}

// RenderUserPrompt fills the user template. Declared variables missing from vars
// take their default, or fail when required; any other missing key is an error too.
func RenderUserPrompt(pt *PromptTemplate, vars Vars) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", pt.ID, err)
	}

	data := make(Vars, len(vars)+len(pt.Variables))
	for k, v := range vars {
		data[k] = v
	}
	for _, v := range pt.Variables {
		if _, ok := data[v.Name]; ok {
			continue
		}
		if v.Required {
			return "", fmt.Errorf("prompt %s: missing required variable %s", pt.ID, v.Name)
		}
		data[v.Name] = v.Default
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", pt.ID, err)
	}
	return buf.String(), nil
}
