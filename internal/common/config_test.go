package common

import (
	"errors"
	"testing"
)

func TestValidateLLM(t *testing.T) {
	tests := []struct {
		name    string
		llm     LLMConfig
		wantErr bool
	}{
		{
			name:    "nothing configured",
			llm:     LLMConfig{},
			wantErr: true,
		},
		{
			name: "openai key only",
			llm:  LLMConfig{OpenAIKey: "sk-test"},
		},
		{
			name: "azure fully configured",
			llm: LLMConfig{
				AzureEndpoint:   "https://example.openai.azure.com",
				AzureKey:        "key",
				AzureDeployment: "gpt-4o",
			},
		},
		{
			name: "azure missing deployment",
			llm: LLMConfig{
				AzureEndpoint: "https://example.openai.azure.com",
				AzureKey:      "key",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LLM: tt.llm}
			err := cfg.ValidateLLM()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrConfig) {
					t.Fatalf("expected ErrConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateDocIntel(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateDocIntel(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	cfg.DocIntel = DocIntelConfig{Endpoint: "https://di.example.com", APIKey: "k"}
	if err := cfg.ValidateDocIntel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
