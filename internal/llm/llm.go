package llm

import (
	"context"
	"errors"
	"strings"
)

// Provider names an extraction backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGrok   Provider = "grok"
)

var (
	// ErrUnknownProvider is returned for provider names outside the closed set.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnparseable is returned when model output contains no JSON object.
	ErrUnparseable = errors.New("unparseable model output")
)

// ParseProvider maps a request value onto a Provider. Empty selects OpenAI.
func ParseProvider(raw string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ProviderOpenAI):
		return ProviderOpenAI, nil
	case string(ProviderGrok):
		return ProviderGrok, nil
	default:
		return "", ErrUnknownProvider
	}
}

func (p Provider) String() string {
	return string(p)
}

// Fields is the raw key/value map a model returns for one document.
type Fields map[string]any

// Extractor reads identity fields from an image.
type Extractor interface {
	ExtractDocumentInfo(ctx context.Context, image []byte) (Fields, error)
}

// Usage is the token accounting some providers return.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
