// Package robots answers allow/deny questions for one crawl run. Missing,
// unreachable, or malformed robots.txt always fails open: crawling must
// never be accidentally blocked by bad robots data.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// Gate holds the parsed robots.txt for a single crawl run. Fetch it once
// with Load, then Allowed answers from memory.
type Gate struct {
	client    *http.Client
	userAgent string
	data      *robotstxt.RobotsData
	found     bool
}

// NewGate creates a Gate for the crawler's own user agent.
func NewGate(userAgent string) *Gate {
	return &Gate{
		client:    &http.Client{Timeout: 5 * time.Second},
		userAgent: userAgent,
	}
}

// Load fetches and parses <base>/robots.txt. Any failure leaves the gate
// in allow-all mode; the returned error is informational only.
func (g *Gate) Load(ctx context.Context, baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("parse base URL %q: %w", baseURL, err)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return fmt.Errorf("create robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read robots.txt body: %w", err)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return fmt.Errorf("parse robots.txt: %w", err)
	}

	g.data = data
	g.found = true
	return nil
}

// Allowed reports whether the crawler may fetch the given path. Rules for
// the gate's own agent take precedence over wildcard groups; with no
// loaded data the answer is always true.
func (g *Gate) Allowed(path string) bool {
	if g.data == nil {
		return true
	}
	return g.data.TestAgent(path, g.userAgent)
}

// Found reports whether a robots.txt was successfully fetched and parsed.
func (g *Gate) Found() bool {
	return g.found
}

// Sitemaps returns any Sitemap: directives from the loaded robots.txt.
func (g *Gate) Sitemaps() []string {
	if g.data == nil {
		return nil
	}
	return g.data.Sitemaps
}
