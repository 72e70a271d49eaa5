package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gasops/mtr-extract/internal/common"
	"github.com/gasops/mtr-extract/internal/docintel"
	"github.com/gasops/mtr-extract/internal/export"
	"github.com/gasops/mtr-extract/internal/joblog"
	"github.com/gasops/mtr-extract/internal/llm/openai"
	"github.com/gasops/mtr-extract/internal/pipeline"
	"github.com/gasops/mtr-extract/internal/template"
	"github.com/gasops/mtr-extract/internal/weldapi"
)

// process-heat fetches the stored MTR PDF for each heat number from the weld
// management system, runs the extraction pipeline, and writes the structured
// JSON (carrying the CompanyMTRFileID from the lookup) per heat.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir   = flag.String("out", "", "output directory (default from OUTPUT_DIR)")
		xlsxPath = flag.String("xlsx", "", "spreadsheet to upsert results into (default from XLSX_PATH)")
		timeout  = flag.Duration("timeout", 5*time.Minute, "per-heat timeout")
	)
	flag.Parse()

	heats := flag.Args()
	if len(heats) == 0 {
		logger.Error("usage", "cmd", "process-heat [flags] <heat-number> [heat-number ...]")
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
	if err := cfg.ValidateWeldAPI(); err != nil {
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

	weld, err := weldapi.NewClient(weldapi.Config{
		BaseURL:       cfg.WeldAPI.BaseURL,
		PFXSource:     cfg.WeldAPI.PFXPath,
		PFXPassword:   cfg.WeldAPI.PFXPassword,
		EncodedString: cfg.WeldAPI.EncodedString,
		Timeout:       cfg.WeldAPI.Timeout,
	}, logger)
	if err != nil {
		logger.Error("weld api client", "error", err)
		os.Exit(1)
	}

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
	proc := pipeline.NewProcessor(analysis, completion, tmpl, cfg.LLM.MaxTokens, logger)

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
	for _, heat := range heats {
		if err := processHeat(proc, weld, jobs, xlsx, heat, *outDir, *timeout, logger); err != nil {
			logger.Error("heat failed", "heat_number", heat, "error", err)
			failures++
		}
	}

	logger.Info("batch done", "heats", len(heats), "failures", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func processHeat(proc *pipeline.Processor, weld *weldapi.Client, jobs *joblog.Log, xlsx *export.Service, heat, outDir string, timeout time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	jobID, jerr := jobs.Start(ctx, heat, "weldapi")
	if jerr != nil {
		logger.Warn("job log unavailable", "error", jerr)
	}
	finish := func(stage, errMsg string) {
		if jerr == nil {
			_ = jobs.Finish(ctx, jobID, stage, errMsg)
		}
	}

	file, err := weld.FetchByHeatNumber(ctx, heat)
	if err != nil {
		finish("", err.Error())
		return err
	}

	res := proc.Process(ctx, file.PDF, "application/pdf", heat+".pdf")

	// the lookup's identifiers win over anything the model produced
	res.Document["HeatNumber"] = file.HeatNumber
	if _, ok := res.Document["CompanyMTRFileID"]; ok {
		res.Document["CompanyMTRFileID"] = file.CompanyMTRFileID
	}

	outPath := filepath.Join(outDir, heat+".mtr.json")
	data, err := json.MarshalIndent(res.Document, "", "  ")
	if err != nil {
		finish(string(res.Stage), err.Error())
		return common.WrapError(err, "encode document")
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		finish(string(res.Stage), err.Error())
		return common.WrapError(err, "write document")
	}

	logger.Info("heat done",
		"heat_number", heat,
		"company_mtr_file_id", file.CompanyMTRFileID,
		"stage", string(res.Stage),
		"out", outPath,
	)

	if xlsx != nil {
		if err := xlsx.Upsert(res.Document); err != nil {
			logger.Warn("xlsx upsert failed", "heat_number", heat, "error", err)
		}
	}
	finish(string(res.Stage), "")
	return nil
}
