package documents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"docextract-api/internal/shared/apperr"
)

const (
	defaultFetchTimeout = 30 * time.Second
	fetchFailedMessage  = "Unable to retrieve file from URL"
	fileTooLargeMessage = "File exceeds maximum upload size"
)

// Fetcher downloads a document from a caller-supplied URL.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

func NewFetcher(client *http.Client, timeout time.Duration, maxBytes int64) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{client: client, timeout: timeout, maxBytes: maxBytes}
}

// Fetch returns the body of a 200 response. Everything else is a client error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, fetchFailedMessage, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, fetchFailedMessage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap(apperr.KindInvalidInput, fetchFailedMessage, fmt.Errorf("status %d", resp.StatusCode))
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, fetchFailedMessage, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, apperr.InvalidInput(fileTooLargeMessage)
	}
	return data, nil
}
