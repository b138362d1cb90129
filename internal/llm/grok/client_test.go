package grok

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract-api/internal/llm"
	"docextract-api/internal/shared/apperr"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}

func reply(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	})
	return body
}

func serve(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(llm.ProviderConfig{APIKey: "xai-test", BaseURL: srv.URL + "/"}, srv.Client())
}

func TestExtractDocumentInfoSendsImagePart(t *testing.T) {
	var captured request
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer xai-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write(reply(`{"doc_id":"123412341234","doc_type":"AADHAAR CARD","full_name":"Anita Rao"}`))
	})

	fields, err := client.ExtractDocumentInfo(context.Background(), pngBytes)
	require.NoError(t, err)

	assert.Equal(t, "grok-2-vision-latest", captured.Model)
	assert.Equal(t, 1000, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	parts := captured.Messages[0].Content
	require.Len(t, parts, 2)
	assert.Equal(t, "image", parts[1].Type)
	require.NotNil(t, parts[1].Image)
	assert.Equal(t, "png", parts[1].Image.Type)
	assert.Equal(t, "iVBORw0KGgoAAA==", parts[1].Image.Data)

	assert.Equal(t, "AADHAAR CARD", fields[llm.KeyDocType])
	assert.Equal(t, "", fields[llm.KeyDOB])
	assert.Equal(t, "png", fields[llm.KeyFileType])
}

func TestExtractDocumentInfoUnparseableIsProviderError(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(reply("no document found"))
	})

	_, err := client.ExtractDocumentInfo(context.Background(), pngBytes)
	require.Error(t, err)
	assert.Equal(t, apperr.KindProvider, apperr.KindOf(err))
	assert.ErrorIs(t, err, llm.ErrUnparseable)
}

func TestExtractDocumentInfoAcceptsAny2xx(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(reply(`{"doc_id":"ABCDE1234F","doc_type":"PAN CARD"}`))
	})

	fields, err := client.ExtractDocumentInfo(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", fields[llm.KeyDocID])
}

func TestExtractDocumentInfoNon200(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := client.ExtractDocumentInfo(context.Background(), pngBytes)
	require.Error(t, err)
	appErr := apperr.As(err)
	assert.Equal(t, apperr.KindProvider, appErr.Kind)
	assert.Contains(t, appErr.Error(), "status 429")
}

func TestModelIsConfigurable(t *testing.T) {
	c := NewClient(llm.ProviderConfig{Model: "grok-vision-beta"}, nil)
	assert.Equal(t, "grok-vision-beta", c.model)
	assert.Equal(t, defaultBaseURL, c.baseURL)
}
