package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/georepute/domain-intelligence/internal/domain"
)

// VisibilityRequest is the AI-visibility scanning service payload.
type VisibilityRequest struct {
	DomainURL string   `json:"domainUrl"`
	Platforms []string `json:"platforms"`
	Language  string   `json:"language"`
	UserID    string   `json:"userId"`
}

type visibilityResponse struct {
	Success      bool                                 `json:"success"`
	Results      map[string]domain.PlatformVisibility `json:"results"`
	OverallScore float64                              `json:"overallScore"`
}

// DefaultPlatforms are the LLM assistants scanned when the caller does not
// choose.
var DefaultPlatforms = []string{"chatgpt", "claude", "gemini", "perplexity"}

// VisibilityClient calls the AI-visibility scanning service.
type VisibilityClient struct {
	baseURL string
	client  *http.Client
}

// NewVisibilityClient creates a client; an empty baseURL disables the
// service.
func NewVisibilityClient(baseURL string) *VisibilityClient {
	return &VisibilityClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Scan asks the service whether LLM assistants mention the brand.
func (c *VisibilityClient) Scan(ctx context.Context, req VisibilityRequest) (domain.AIVisibility, error) {
	if c.baseURL == "" {
		return domain.AIVisibility{}, fmt.Errorf("ai visibility service not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.AIVisibility{}, fmt.Errorf("marshal visibility request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return domain.AIVisibility{}, fmt.Errorf("create visibility request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.AIVisibility{}, fmt.Errorf("call visibility service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AIVisibility{}, fmt.Errorf("visibility service returned %d", resp.StatusCode)
	}

	var decoded visibilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.AIVisibility{}, fmt.Errorf("decode visibility response: %w", err)
	}
	if !decoded.Success {
		return domain.AIVisibility{}, fmt.Errorf("visibility service reported failure")
	}
	return domain.AIVisibility{Platforms: decoded.Results, OverallScore: decoded.OverallScore}, nil
}
