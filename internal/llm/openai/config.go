package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the completion client. When the three Azure fields are set the
// client talks to an Azure OpenAI deployment; otherwise it uses the public
// OpenAI API with APIKey.
type Config struct {
	AzureEndpoint   string
	AzureKey        string
	AzureDeployment string
	AzureAPIVersion string // default 2023-10-01

	APIKey  string // if empty, falls back to env OPENAI_API_KEY
	BaseURL string // default https://api.openai.com/v1
	Model   string // e.g., "gpt-4o-mini"

	Temperature float32       // 0 for deterministic extraction
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.AzureAPIVersion == "" {
		cfg.AzureAPIVersion = "2023-10-01"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// hasAzure reports whether the Azure deployment is fully configured.
func (c *Client) hasAzure() bool {
	return c.cfg.AzureEndpoint != "" && c.cfg.AzureKey != "" && c.cfg.AzureDeployment != ""
}
