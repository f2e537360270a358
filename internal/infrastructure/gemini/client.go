package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/docmatch/backend/internal/domain"
)

const maxAttempts = 3

// Client handles communication with the Gemini generateContent API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client
func NewClient(apiKey, baseURL, model string) *Client {
	// Free-tier Gemini allows roughly 10 requests per minute; stay under it
	limiter := rate.NewLimiter(rate.Limit(0.15), 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose model-output logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Wire types, subset of the generateContent schema
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// documentSchema constrains the model output to the structured-document shape
var documentSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"document_type": {"type": "STRING", "description": "The type of document: 'Invoice' or 'Purchase Order'"},
		"document_id": {"type": "STRING", "description": "The unique ID or number (e.g., INV-2024-001 or PO-2024-001)"},
		"vendor_name": {"type": "STRING", "description": "The name of the vendor/company"},
		"total_amount": {"type": "NUMBER", "description": "The final total monetary value"},
		"items": {
			"type": "ARRAY",
			"description": "A list of line items, including description, quantity, and unit price.",
			"items": {
				"type": "OBJECT",
				"properties": {
					"description": {"type": "STRING"},
					"quantity": {"type": "NUMBER"},
					"unit_price": {"type": "NUMBER"}
				},
				"required": ["description", "quantity", "unit_price"]
			}
		}
	},
	"required": ["document_type", "document_id", "vendor_name", "total_amount", "items"]
}`)

// ExtractDocument asks the model for the structured fields of one document
func (c *Client) ExtractDocument(ctx context.Context, rawText, docType string) (*domain.StructuredDocument, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: AI client not initialized", domain.ErrAIExtractionFailed)
	}

	payload, err := c.callWithRetry(ctx, buildPrompt(rawText, docType))
	if err != nil {
		return nil, err
	}

	return MapToStructuredDocument(payload, docType), nil
}

func buildPrompt(rawText, docType string) string {
	return fmt.Sprintf(`You are an expert document data extraction agent for a finance team.
Analyze the following %s text and extract the required fields into the JSON format provided.
Ensure 'document_type' is set to '%s'.

DOCUMENT TEXT:
---
%s
---`, docType, docType, rawText)
}

// callWithRetry posts the prompt, retrying transient failures (network
// errors, 429, 5xx) with exponential backoff.
func (c *Client) callWithRetry(ctx context.Context, prompt string) (map[string]interface{}, error) {
	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   documentSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[GEMINI] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrAIExtractionFailed, err)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			log.Printf("[GEMINI] transient API error (attempt %d) - status: %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrAIExtractionFailed, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrAIExtractionFailed, resp.StatusCode, string(respBody))
		}

		var genResp generateResponse
		if err := json.Unmarshal(respBody, &genResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("%w: empty model response", domain.ErrAIExtractionFailed)
		}

		text := genResp.Candidates[0].Content.Parts[0].Text
		if c.debug {
			log.Printf("[GEMINI] model output: %s", text)
		}

		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
			return nil, fmt.Errorf("%w: model returned invalid JSON: %v", domain.ErrAIExtractionFailed, err)
		}
		return payload, nil
	}

	return nil, fmt.Errorf("%w: call failed after %d attempts: %v", domain.ErrAIExtractionFailed, maxAttempts, lastErr)
}

// exponentialBackoff returns the wait before the next retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250<<attempt) * time.Millisecond
}
