// Package services holds HTTP clients for the downstream collaborators the
// pipeline delegates to. Both clients are optional-success: callers treat
// any error as a degraded, empty stage output.
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

// KeywordRequest is the keyword/competitor extraction service payload.
type KeywordRequest struct {
	BrandName      string `json:"brandName"`
	WebsiteURL     string `json:"websiteUrl"`
	Industry       string `json:"industry"`
	Language       string `json:"language"`
	CompanyContext string `json:"companyContext"`
}

type keywordResponse struct {
	Success bool               `json:"success"`
	Data    domain.KeywordData `json:"data"`
}

// KeywordClient calls the keyword/competitor extraction service.
type KeywordClient struct {
	baseURL string
	client  *http.Client
}

// NewKeywordClient creates a client; an empty baseURL disables the service.
func NewKeywordClient(baseURL string) *KeywordClient {
	return &KeywordClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Extract requests keywords and competitor candidates for the brand.
func (c *KeywordClient) Extract(ctx context.Context, req KeywordRequest) (domain.KeywordData, error) {
	if c.baseURL == "" {
		return domain.KeywordData{}, fmt.Errorf("keyword service not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.KeywordData{}, fmt.Errorf("marshal keyword request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return domain.KeywordData{}, fmt.Errorf("create keyword request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.KeywordData{}, fmt.Errorf("call keyword service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.KeywordData{}, fmt.Errorf("keyword service returned %d", resp.StatusCode)
	}

	var decoded keywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.KeywordData{}, fmt.Errorf("decode keyword response: %w", err)
	}
	if !decoded.Success {
		return domain.KeywordData{}, fmt.Errorf("keyword service reported failure")
	}
	return decoded.Data, nil
}
