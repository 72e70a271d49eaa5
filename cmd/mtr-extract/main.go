package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gasops/mtr-extract/internal/common"
	"github.com/gasops/mtr-extract/internal/docintel"
	"github.com/gasops/mtr-extract/internal/export"
	"github.com/gasops/mtr-extract/internal/joblog"
	"github.com/gasops/mtr-extract/internal/llm/openai"
	"github.com/gasops/mtr-extract/internal/pipeline"
	"github.com/gasops/mtr-extract/internal/template"
)

// mtr-extract processes local MTR documents (PDF or image) through the
// OCR + reconciliation pipeline and writes one JSON file per input.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir   = flag.String("out", "", "output directory (default from OUTPUT_DIR)")
		xlsxPath = flag.String("xlsx", "", "spreadsheet to upsert results into (default from XLSX_PATH)")
		timeout  = flag.Duration("timeout", 5*time.Minute, "per-document timeout")
	)
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		logger.Error("usage", "cmd", "mtr-extract [flags] <file.pdf> [file2.pdf ...]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.ValidateDocIntel(); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateLLM(); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	if *outDir == "" {
		*outDir = cfg.Output.Dir
	}
	if *xlsxPath == "" {
		*xlsxPath = cfg.Output.XLSXPath
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("create output dir", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	proc := buildProcessor(cfg, logger)

	jobs, err := joblog.Open(cfg.Output.JobLogPath, logger)
	if err != nil {
		logger.Error("open job log", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := jobs.Close(); cerr != nil {
			logger.Error("close job log", "error", cerr)
		}
	}()

	var xlsx *export.Service
	if *xlsxPath != "" {
		xlsx = export.NewService(*xlsxPath, logger)
	}

	failures := 0
	for _, path := range files {
		if err := processFile(proc, jobs, xlsx, path, *outDir, *timeout, logger); err != nil {
			logger.Error("document failed", "file", path, "error", err)
			failures++
		}
	}

	logger.Info("batch done", "files", len(files), "failures", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func buildProcessor(cfg *common.Config, logger *slog.Logger) *pipeline.Processor {
	analysis := docintel.NewClient(docintel.Config{
		Endpoint:     cfg.DocIntel.Endpoint,
		APIKey:       cfg.DocIntel.APIKey,
		ModelID:      cfg.DocIntel.ModelID,
		APIVersion:   cfg.DocIntel.APIVersion,
		PollInterval: cfg.DocIntel.PollInterval,
		PollAttempts: cfg.DocIntel.PollAttempts,
	}, logger)

	completion := openai.NewClient(openai.Config{
		AzureEndpoint:   cfg.LLM.AzureEndpoint,
		AzureKey:        cfg.LLM.AzureKey,
		AzureDeployment: cfg.LLM.AzureDeployment,
		AzureAPIVersion: cfg.LLM.AzureAPIVersion,
		APIKey:          cfg.LLM.OpenAIKey,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
	}, logger)

	tmpl := template.Load(cfg.Template.Path, logger)
	return pipeline.NewProcessor(analysis, completion, tmpl, cfg.LLM.MaxTokens, logger)
}

func processFile(proc *pipeline.Processor, jobs *joblog.Log, xlsx *export.Service, path, outDir string, timeout time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	doc, err := os.ReadFile(path)
	if err != nil {
		return common.WrapError(err, "read input")
	}

	name := filepath.Base(path)
	jobID, jerr := jobs.Start(ctx, "", name)
	if jerr != nil {
		logger.Warn("job log unavailable", "error", jerr)
	}

	res := proc.Process(ctx, doc, contentTypeFor(path), name)

	heat, _ := res.Document["HeatNumber"].(string)
	outPath := filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name))+".mtr.json")
	if err := writeJSON(outPath, res.Document); err != nil {
		if jerr == nil {
			_ = jobs.Finish(ctx, jobID, string(res.Stage), err.Error())
		}
		return err
	}
	logger.Info("document done", "file", name, "stage", string(res.Stage), "heat_number", heat, "out", outPath)

	if xlsx != nil {
		if err := xlsx.Upsert(res.Document); err != nil {
			logger.Warn("xlsx upsert failed", "file", name, "error", err)
		}
	}
	if jerr == nil {
		_ = jobs.Finish(ctx, jobID, string(res.Stage), "")
	}
	return nil
}

func contentTypeFor(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

func writeJSON(path string, doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return common.WrapError(err, "encode document")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return common.WrapError(err, "write document")
	}
	return nil
}
