package llm

import "context"

// Message is one chat turn sent to a completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ExtractedProperty is one property pulled out of free text by the
// properties-extraction prompt. Category groups rows for display only; the
// reconciliation path keys on Property.
type ExtractedProperty struct {
	Category string `json:"category"`
	Property string `json:"property"`
	Value    string `json:"value"`
	Unit     string `json:"unit"`
	Notes    string `json:"notes"`
}

// CompletionClient is the single request/response interface the pipeline
// depends on. Production implementations live in the openai subpackage; the
// pipeline tests use a stub.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}
