package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docextract-api/internal/llm"
	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://api.x.ai/v1"
	defaultModel   = "grok-2-vision-latest"
	defaultTimeout = 30 * time.Second
	maxTokens      = 1000
	maxBodyBytes   = 4 << 20
	maxErrorBody   = 512
)

// Client talks to the xAI chat completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func New(cfg llm.ProviderConfig) llm.Extractor {
	return NewClient(cfg, nil)
}

func NewClient(cfg llm.ProviderConfig, httpClient *http.Client) *Client {
	c := &Client{
		apiKey:     cfg.APIKey,
		model:      strings.TrimSpace(cfg.Model),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout:    cfg.Timeout,
		httpClient: httpClient,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

type imagePart struct {
	Data string `json:"data"`
	Type string `json:"type"`
}

type contentPart struct {
	Type  string     `json:"type"`
	Text  string     `json:"text,omitempty"`
	Image *imagePart `json:"image,omitempty"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *llm.Usage `json:"usage,omitempty"`
}

// ExtractDocumentInfo requires the model to answer with a JSON object;
// anything else is a provider failure.
func (c *Client) ExtractDocumentInfo(ctx context.Context, image []byte) (llm.Fields, error) {
	format, b64, err := llm.EncodeImage(image)
	if err != nil {
		return nil, err
	}

	content, err := c.complete(ctx, request{
		Model: c.model,
		Messages: []message{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: llm.Instruction()},
				{Type: "image", Image: &imagePart{Data: b64, Type: format.String()}},
			},
		}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, apperr.Provider("Document extraction failed", err)
	}

	fields, err := llm.ParseFields(content, false)
	if err != nil {
		return nil, apperr.Provider("Document extraction failed", err)
	}
	fields[llm.KeyFileType] = format.String()
	return fields, nil
}

func (c *Client) complete(ctx context.Context, body request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("grok request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("grok read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("grok api error: status %d: %s", resp.StatusCode, truncate(raw, maxErrorBody))
	}

	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("grok response parse: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("grok response missing choices")
	}
	if parsed.Usage != nil {
		telemetry.Info("llm.usage", map[string]any{
			"provider":          string(llm.ProviderGrok),
			"model":             c.model,
			"prompt_tokens":     parsed.Usage.PromptTokens,
			"completion_tokens": parsed.Usage.CompletionTokens,
			"total_tokens":      parsed.Usage.TotalTokens,
		})
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(bytes.TrimSpace(b))
}

var _ llm.Extractor = (*Client)(nil)
