package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gasops/mtr-extract/internal/common"
	"github.com/gasops/mtr-extract/internal/weldapi"
)

// post-mtr uploads extracted MTR JSON files to the weld management system's
// AddUpdateMTRMetadata endpoint. Exits non-zero if any file fails.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		dir     = flag.String("dir", "", "directory of .json files to post (default from OUTPUT_DIR)")
		timeout = flag.Duration("timeout", time.Minute, "per-file timeout")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	if err := cfg.ValidateWeldAPI(); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	if *dir == "" {
		*dir = cfg.Output.Dir
	}

	files := flag.Args()
	if len(files) == 0 {
		found, err := listJSONFiles(*dir)
		if err != nil {
			logger.Error("list json files", "dir", *dir, "error", err)
			os.Exit(1)
		}
		files = found
	}
	if len(files) == 0 {
		logger.Error("no json files to post", "dir", *dir)
		os.Exit(2)
	}

	client, err := weldapi.NewClient(weldapi.Config{
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

	posted, failed := 0, 0
	for _, path := range files {
		if err := postFile(client, path, *timeout); err != nil {
			logger.Error("post failed", "file", path, "error", err)
			failed++
			continue
		}
		logger.Info("posted", "file", path)
		posted++
	}

	total := posted + failed
	rate := 0.0
	if total > 0 {
		rate = float64(posted) / float64(total) * 100
	}
	logger.Info("post summary",
		"total", total,
		"posted", posted,
		"failed", failed,
		"success_rate", fmt.Sprintf("%.1f%%", rate),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func postFile(client *weldapi.Client, path string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	raw, err := os.ReadFile(path)
	if err != nil {
		return common.WrapError(err, "read json")
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return common.WrapError(err, "parse json")
	}
	if heat, _ := doc["HeatNumber"].(string); heat == "" {
		return common.NewAppError("INVALID_MTR", "document has no HeatNumber", common.ErrUnusable)
	}
	return client.PostMetadata(ctx, doc)
}
