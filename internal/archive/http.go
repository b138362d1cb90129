package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docextract-api/internal/shared/apperr"
)

const (
	uploadPath          = "/s3/upload/oaas/files/v2"
	defaultHTTPTimeout  = 60 * time.Second
	maxResponseBytes    = 1 << 20
	uploadFailedMessage = "Failed to upload document"
)

// HTTPConfig holds the archival service endpoint and static headers.
type HTTPConfig struct {
	BaseURL    string
	AuthToken  string
	RequestID  string
	AppID      string
	DeviceID   string
	BusinessID string
	Timeout    time.Duration
}

// HTTPClient submits documents to the remote archival service.
type HTTPClient struct {
	cfg        HTTPConfig
	httpClient *http.Client
}

func NewHTTPClient(cfg HTTPConfig, httpClient *http.Client) *HTTPClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{cfg: cfg, httpClient: httpClient}
}

type uploadRequest struct {
	User     Submitter  `json:"user"`
	Products []Document `json:"products"`
	Tenant   string     `json:"tenant"`
}

type uploadResponse struct {
	S3URLs map[string][]string `json:"s3_urls"`
}

// Store posts the bundle. Transport failures and non-2xx answers are 400s;
// a 2xx body that cannot be decoded is a 500.
func (c *HTTPClient) Store(ctx context.Context, submitter Submitter, docs []Document, tenant string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(uploadRequest{User: submitter, Products: docs, Tenant: tenantOrDefault(tenant)})
	if err != nil {
		return Result{}, apperr.Archival(http.StatusInternalServerError, uploadFailedMessage, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+uploadPath, bytes.NewReader(payload))
	if err != nil {
		return Result{}, apperr.Archival(http.StatusBadRequest, uploadFailedMessage, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	req.Header.Set("x-request-id", c.cfg.RequestID)
	req.Header.Set("x-app-id", c.cfg.AppID)
	req.Header.Set("x-device-id", c.cfg.DeviceID)
	req.Header.Set("x-business-id", c.cfg.BusinessID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, apperr.Archival(http.StatusBadRequest, uploadFailedMessage, fmt.Errorf("archive request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, apperr.Archival(http.StatusBadRequest, uploadFailedMessage, fmt.Errorf("archive read: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, apperr.Archival(http.StatusBadRequest, uploadFailedMessage, fmt.Errorf("archive status %d", resp.StatusCode))
	}

	var decoded uploadResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{}, apperr.Archival(http.StatusInternalServerError, uploadFailedMessage, fmt.Errorf("archive response parse: %w", err))
	}
	return Result{URLs: decoded.S3URLs}, nil
}

var _ Archiver = (*HTTPClient)(nil)
