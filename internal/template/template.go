package template

import (
	"encoding/json"
	"log/slog"
	"os"
)

// Load reads the sample template from path and returns its cleaned form.
// A missing or corrupt file degrades to the built-in fallback schema so the
// pipeline never runs with a nil template. The returned tree is freshly
// built per call and safe to hand to a pipeline run.
func Load(path string, logger *slog.Logger) map[string]any {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("template.load.fallback", "path", path, "error", err)
		return Fallback()
	}

	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		logger.Warn("template.load.fallback", "path", path, "error", err)
		return Fallback()
	}

	logger.Info("template.load.ok", "path", path, "keys", len(tree))
	cleaned, _ := Clean(tree).(map[string]any)
	if cleaned == nil {
		return Fallback()
	}
	return cleaned
}

// Fallback returns the minimal built-in schema used when the sample template
// cannot be loaded. Top-level keys mirror the real template.
func Fallback() map[string]any {
	return map[string]any{
		"CompanyMTRFileID":  nil,
		"HeatNumber":        "",
		"ZNumber":           "",
		"CertificationDate": "",
		"HNPipeDetails": []any{
			map[string]any{
				"PipeNumber":                "",
				"Grade":                     "",
				"HNPipeHeatChemicalResults": map[string]any{},
				"HNPipeChemicalCompResults": map[string]any{},
				"HNPipeTensileTestResults":  map[string]any{},
				"HNPipeCVNResults":          map[string]any{},
				"HNPipeHardnessResults":     map[string]any{},
			},
		},
	}
}
