package openai

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
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
	maxTokens      = 1000
	maxBodyBytes   = 4 << 20
)

// Client implements llm.Extractor using OpenAI Chat Completions with image input.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// New constructs a client from provider settings. Empty values take defaults.
func New(cfg llm.ProviderConfig) llm.Extractor {
	return NewClient(cfg, nil)
}

// NewClient allows a custom transport, mainly for tests.
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

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *llm.Usage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ExtractDocumentInfo sends the image to the model and parses its answer.
// Output that holds no JSON object yields the empty template.
func (c *Client) ExtractDocumentInfo(ctx context.Context, image []byte) (llm.Fields, error) {
	format, b64, err := llm.EncodeImage(image)
	if err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: llm.Instruction()},
				{Type: "image_url", ImageURL: &imageURL{
					URL:    "data:" + format.MIMEType() + ";base64," + b64,
					Detail: "high",
				}},
			},
		}},
		MaxTokens: maxTokens,
	}

	content, err := c.complete(ctx, reqBody)
	if err != nil {
		return nil, apperr.Provider("Document extraction failed", err)
	}

	fields, err := llm.ParseFields(content, true)
	if err != nil {
		return nil, apperr.Provider("Document extraction failed", err)
	}
	fields[llm.KeyFileType] = format.String()
	return fields, nil
}

func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(reqBody)
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
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("openai read: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", fmt.Errorf("openai status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	logUsage(c.model, parsed.Usage)

	return parsed.Choices[0].Message.Content, nil
}

func logUsage(model string, usage *llm.Usage) {
	if usage == nil {
		return
	}
	telemetry.Info("llm.usage", map[string]any{
		"provider":          string(llm.ProviderOpenAI),
		"model":             model,
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
	})
}

var _ llm.Extractor = (*Client)(nil)
