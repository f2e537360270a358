package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmatch/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", "gemini-2.5-flash")

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, "gemini-2.5-flash", client.model)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", "gemini-2.5-flash")

	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// modelResponse wraps a document payload in the generateContent envelope
func modelResponse(t *testing.T, payload map[string]interface{}) []byte {
	t.Helper()
	text, err := json.Marshal(payload)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": string(text)}},
			}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestExtractDocument_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))
		assert.Equal(t, http.MethodPost, r.Method)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "Invoice")
		assert.Contains(t, req.Contents[0].Parts[0].Text, "invoice raw text")
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)

		w.WriteHeader(http.StatusOK)
		w.Write(modelResponse(t, map[string]interface{}{
			"document_type": "Invoice",
			"document_id":   "INV-2024-001",
			"vendor_name":   "TechSupply Co.",
			"total_amount":  1295.00,
			"items": []map[string]interface{}{
				{"description": "Laptop", "quantity": 1, "unit_price": 1200.00},
			},
		}))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, "gemini-2.5-flash")

	doc, err := client.ExtractDocument(context.Background(), "invoice raw text", domain.DocTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "Invoice", doc.DocumentType)
	assert.Equal(t, "INV-2024-001", doc.DocumentID)
	assert.Equal(t, "TechSupply Co.", doc.VendorName)
	assert.Equal(t, 1295.00, doc.TotalAmount)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Laptop", doc.Items[0].Description)
}

func TestExtractDocument_MissingAPIKey(t *testing.T) {
	client := NewClient("", "https://api.example.com", "gemini-2.5-flash")

	_, err := client.ExtractDocument(context.Background(), "text", domain.DocTypeInvoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAIExtractionFailed)
}

func TestExtractDocument_ClientErrorNoRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid request"}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, "gemini-2.5-flash")

	_, err := client.ExtractDocument(context.Background(), "text", domain.DocTypeInvoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAIExtractionFailed)
	assert.Equal(t, 1, calls, "4xx responses must not be retried")
}

func TestExtractDocument_RetriesTransientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(modelResponse(t, map[string]interface{}{
			"document_type": "Invoice",
			"document_id":   "INV-1",
			"vendor_name":   "Vendor",
			"total_amount":  10.0,
			"items":         []map[string]interface{}{},
		}))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, "gemini-2.5-flash")

	doc, err := client.ExtractDocument(context.Background(), "text", domain.DocTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "INV-1", doc.DocumentID)
}

func TestExtractDocument_ExhaustsRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, "gemini-2.5-flash")

	_, err := client.ExtractDocument(context.Background(), "text", domain.DocTypeInvoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAIExtractionFailed)
	assert.Equal(t, maxAttempts, calls)
}

func TestExtractDocument_InvalidModelJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": "not json at all"}},
				}},
			},
		})
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, "gemini-2.5-flash")

	_, err := client.ExtractDocument(context.Background(), "text", domain.DocTypeInvoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAIExtractionFailed)
}

func TestExtractDocument_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, "gemini-2.5-flash")

	_, err := client.ExtractDocument(context.Background(), "text", domain.DocTypeInvoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAIExtractionFailed)
}
