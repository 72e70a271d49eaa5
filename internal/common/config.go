package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DocIntel DocIntelConfig
	LLM      LLMConfig
	WeldAPI  WeldAPIConfig
	Template TemplateConfig
	Output   OutputConfig
}

// DocIntelConfig holds document-analysis service configuration
type DocIntelConfig struct {
	Endpoint     string
	APIKey       string
	ModelID      string
	APIVersion   string
	PollInterval time.Duration
	PollAttempts int
}

// LLMConfig holds completion-service configuration. Either the Azure
// deployment fields or the plain OpenAI key must be set; Azure wins when both
// are present.
type LLMConfig struct {
	AzureEndpoint   string
	AzureKey        string
	AzureDeployment string
	AzureAPIVersion string
	OpenAIKey       string
	Model           string
	Temperature     float32
	MaxTokens       int
	Timeout         time.Duration
}

// WeldAPIConfig holds the certificate-authenticated metadata API configuration
type WeldAPIConfig struct {
	BaseURL       string
	PFXPath       string
	PFXPassword   string
	EncodedString string
	Timeout       time.Duration
}

// TemplateConfig holds sample-template configuration
type TemplateConfig struct {
	Path string
}

// OutputConfig holds output artifact configuration
type OutputConfig struct {
	Dir        string
	JobLogPath string
	XLSXPath   string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is applied first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		DocIntel: DocIntelConfig{
			Endpoint:     firstEnv("AZURE_DI_ENDPOINT", "AZURE_FORM_RECOGNIZER_ENDPOINT"),
			APIKey:       firstEnv("AZURE_DI_KEY", "AZURE_FORM_RECOGNIZER_KEY"),
			ModelID:      getEnv("AZURE_DI_MODEL_ID", "prebuilt-layout"),
			APIVersion:   getEnv("AZURE_DI_API_VERSION", "2023-07-31"),
			PollInterval: getEnvAsDuration("AZURE_DI_POLL_INTERVAL", time.Second),
			PollAttempts: getEnvAsInt("AZURE_DI_POLL_ATTEMPTS", 60),
		},
		LLM: LLMConfig{
			AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureKey:        firstEnv("AZURE_OPENAI_KEY", "AZURE_OPENAI_API_KEY"),
			AzureDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", ""),
			AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2023-10-01"),
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			Model:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:     getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			MaxTokens:       getEnvAsInt("OPENAI_MAX_TOKENS", 4000),
			Timeout:         getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
		},
		WeldAPI: WeldAPIConfig{
			BaseURL:       getEnv("WELD_API_BASE_URL", "https://oamsapi.gasopsiq.com"),
			PFXPath:       getEnv("WELD_API_PFX_PATH", "./certificate/oamsapicert2023.pfx"),
			PFXPassword:   getEnv("WELD_API_PFX_PASSWORD", ""),
			EncodedString: firstEnv("ENCODED_STRING", "encoded_string"),
			Timeout:       getEnvAsDuration("WELD_API_TIMEOUT", 30*time.Second),
		},
		Template: TemplateConfig{
			Path: getEnv("TEMPLATE_PATH", "Sample json/sample.json"),
		},
		Output: OutputConfig{
			Dir:        getEnv("OUTPUT_DIR", "./output"),
			JobLogPath: getEnv("JOBLOG_PATH", "./output/jobs.db"),
			XLSXPath:   getEnv("XLSX_PATH", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateDocIntel checks the configuration needed for any OCR path.
func (c *Config) ValidateDocIntel() error {
	if c.DocIntel.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_DI_ENDPOINT is required", ErrConfig)
	}
	if c.DocIntel.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_DI_KEY is required", ErrConfig)
	}
	return nil
}

// ValidateLLM checks that at least one completion provider is configured.
func (c *Config) ValidateLLM() error {
	if c.HasAzureOpenAI() || c.LLM.OpenAIKey != "" {
		return nil
	}
	return NewAppError("CONFIG_ERROR", "no completion provider configured (set AZURE_OPENAI_* or OPENAI_API_KEY)", ErrConfig)
}

// ValidateWeldAPI checks the configuration needed for the metadata API paths.
func (c *Config) ValidateWeldAPI() error {
	if c.WeldAPI.PFXPath == "" {
		return NewAppError("CONFIG_ERROR", "WELD_API_PFX_PATH is required", ErrConfig)
	}
	if c.WeldAPI.PFXPassword == "" {
		return NewAppError("CONFIG_ERROR", "WELD_API_PFX_PASSWORD is required", ErrConfig)
	}
	return nil
}

// HasAzureOpenAI reports whether the Azure OpenAI deployment is fully configured.
func (c *Config) HasAzureOpenAI() bool {
	return c.LLM.AzureEndpoint != "" && c.LLM.AzureKey != "" && c.LLM.AzureDeployment != ""
}
