package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gasops/mtr-extract/internal/llm"
)

// Complete implements llm.CompletionClient against either an Azure OpenAI
// deployment or the public OpenAI chat/completions API, selected by
// configuration. Azure wins when both are configured.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, maxTokens int) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	provider := "openai"
	if c.hasAzure() {
		provider = "azure"
	}
	c.log.Info("llm.complete.start",
		"req_id", rid,
		"provider", provider,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"messages", len(messages),
		"max_tokens", maxTokens,
	)

	body := map[string]any{
		"messages":    messages,
		"temperature": c.cfg.Temperature,
	}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}

	var url string
	headers := map[string]string{}
	if c.hasAzure() {
		url = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimRight(c.cfg.AzureEndpoint, "/"), c.cfg.AzureDeployment, c.cfg.AzureAPIVersion)
		headers["api-key"] = c.cfg.AzureKey
	} else {
		url = strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
		body["model"] = c.cfg.Model
	}

	raw, status, err := llm.SendJSON(ctx, c.http, url, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.complete.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.complete.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in completion response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("llm.complete.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
