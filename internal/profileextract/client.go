// Package profileextract calls the external profile extraction service,
// which turns raw CV text into structured profile attributes. The service is
// a black box; responses are schema-validated before anything reaches the
// profile store.
package profileextract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/remoteboard/remoteboard/internal/config"
	"github.com/remoteboard/remoteboard/internal/schemas"
)

// responseSchema is the embedded contract for extraction responses.
const responseSchema = "profile_extraction.schema.json"

// Attribute is one profile attribute extracted from a CV.
type Attribute struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Extractor is an abstraction over profile extraction providers.
type Extractor interface {
	// Extract derives profile attributes from CV text.
	Extract(ctx context.Context, cvText string) ([]Attribute, error)
}

// Client implements Extractor against the HTTP extraction service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an extraction client from configuration.
func NewClient(cfg *config.ExtractorConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, fmt.Errorf("extraction service is not configured")
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type extractRequest struct {
	CVText string `json:"cv_text"`
}

type extractResponse struct {
	Attributes []Attribute `json:"attributes"`
}

// Extract sends CV text to the extraction service and returns the validated
// attributes. An empty attribute list is a valid answer for a CV the service
// could not read anything from.
func (c *Client) Extract(ctx context.Context, cvText string) ([]Attribute, error) {
	payload, err := json.Marshal(extractRequest{CVText: cvText})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	// The service is outside our trust boundary; reject anything that does
	// not match the contract before it can land in the profile store.
	if err := schemas.Validate(responseSchema, string(body)); err != nil {
		return nil, fmt.Errorf("extraction response rejected: %w", err)
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	return parsed.Attributes, nil
}
