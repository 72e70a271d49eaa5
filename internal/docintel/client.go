package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gasops/mtr-extract/internal/common"
)

// AnalysisClient submits a document to a document-analysis service and
// returns the completed result tree. It exists as an interface so the
// pipeline tests can run against a stub instead of a live endpoint.
type AnalysisClient interface {
	Analyze(ctx context.Context, doc []byte, contentType string) (map[string]any, error)
}

// Config for the document-analysis client.
type Config struct {
	Endpoint     string
	APIKey       string
	ModelID      string // e.g. "prebuilt-layout"
	APIVersion   string
	PollInterval time.Duration // default 1s
	PollAttempts int           // default 60
}

// Client is the production AnalysisClient against an Azure Document
// Intelligence (Form Recognizer) endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.ModelID == "" {
		cfg.ModelID = "prebuilt-layout"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-07-31"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
		log:  logger,
	}
}

// Analyze submits the document and polls the returned operation location
// until the service reports a terminal status. Endpoints that answer with an
// immediate body (no Operation-Location header) short-circuit the poll loop.
func (c *Client) Analyze(ctx context.Context, doc []byte, contentType string) (map[string]any, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "missing document-analysis endpoint or API key", common.ErrConfig)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	rid := uuid.New().String()
	start := time.Now()
	analyzeURL := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.ModelID, c.cfg.APIVersion)

	c.log.Info("docintel.analyze.start",
		"req_id", rid,
		"model", c.cfg.ModelID,
		"bytes", len(doc),
		"content_type", contentType,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, analyzeURL, bytes.NewReader(doc))
	if err != nil {
		return nil, common.WrapError(err, "build analyze request")
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("docintel.analyze.send_error", "req_id", rid, "error", err)
		return nil, common.WrapError(err, "submit analysis")
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, c.submitError(rid, resp.StatusCode, body)
	}

	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		opLocation = resp.Header.Get("operation-location")
	}
	if opLocation == "" {
		// some endpoints return the result body directly
		var result map[string]any
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, common.WrapError(err, "decode immediate analysis result")
		}
		c.log.Info("docintel.analyze.ok", "req_id", rid, "immediate", true,
			"elapsed_ms", time.Since(start).Milliseconds())
		return result, nil
	}

	return c.poll(ctx, rid, opLocation, start)
}

func (c *Client) poll(ctx context.Context, rid, opLocation string, start time.Time) (map[string]any, error) {
	for attempt := 1; attempt <= c.cfg.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opLocation, nil)
		if err != nil {
			return nil, common.WrapError(err, "build poll request")
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Error("docintel.poll.send_error", "req_id", rid, "attempt", attempt, "error", err)
			return nil, common.WrapError(err, "poll analysis")
		}
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, common.ServiceError(resp.StatusCode, string(body))
		}

		var result map[string]any
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, common.WrapError(err, "decode poll response")
		}

		status, _ := result["status"].(string)
		switch strings.ToLower(status) {
		case "succeeded":
			c.log.Info("docintel.analyze.ok",
				"req_id", rid,
				"attempts", attempt,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return result, nil
		case "failed", "cancelled":
			c.log.Error("docintel.analyze.terminal", "req_id", rid, "status", status)
			return nil, common.NewAppError("ANALYSIS_"+strings.ToUpper(status),
				fmt.Sprintf("analysis %s", status), common.ErrService)
		}
	}

	c.log.Error("docintel.analyze.timeout", "req_id", rid, "attempts", c.cfg.PollAttempts)
	return nil, common.NewAppError("ANALYSIS_TIMEOUT", "timed out waiting for analysis to complete", common.ErrTimeout)
}

// submitError maps a non-2xx submit response to an error. 403 gets a
// network/firewall diagnostic attached since that is by far its most common
// cause with this service.
func (c *Client) submitError(rid string, status int, body []byte) error {
	msg := string(body)
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	c.log.Error("docintel.analyze.rejected", "req_id", rid, "status", status, "message", msg)

	if status == http.StatusForbidden {
		hint := "access denied (403): the document-analysis resource likely has virtual-network or " +
			"firewall restrictions; enable public access or add this client's IP to the allowed list"
		return common.ServiceError(status, msg+" — "+hint)
	}
	return common.ServiceError(status, msg)
}
