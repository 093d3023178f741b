// Package fetch retrieves raw HTML with bounded timeouts. Failures are
// encoded as status codes so a single bad page never aborts a crawl.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/georepute/domain-intelligence/internal/urlutil"
)

const maxBodyBytes = 5 << 20 // 5 MiB per page

// Result is a fetch outcome. StatusCode 408 means timeout, 500 means any
// other transport failure; callers must check it before using HTML.
type Result struct {
	HTML       string
	StatusCode int
}

// Fetcher performs timeout-bounded GETs with a fixed identifying user agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	renderer  *Renderer
	logger    *zap.Logger
}

// NewFetcher creates a Fetcher. Renderer is optional; pass nil to disable
// the rendered-fetch fallback.
func NewFetcher(userAgent string, timeout time.Duration, renderer *Renderer, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{},
		userAgent: userAgent,
		timeout:   timeout,
		renderer:  renderer,
		logger:    logger,
	}
}

// Fetch retrieves the URL's HTML. Scheme-less input is prefixed with
// https://. Non-2xx responses yield an empty body with the response's
// status code.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Result {
	target := urlutil.EnsureScheme(rawURL)

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{StatusCode: http.StatusInternalServerError}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return Result{StatusCode: http.StatusRequestTimeout}
		}
		return Result{StatusCode: http.StatusInternalServerError}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return Result{StatusCode: http.StatusRequestTimeout}
		}
		return Result{StatusCode: http.StatusInternalServerError}
	}

	html := string(body)
	if f.renderer != nil && looksLikeScriptShell(html) {
		rendered, renderErr := f.renderer.Render(ctx, target)
		if renderErr != nil {
			f.logger.Warn("render fallback failed, keeping static HTML",
				zap.String("url", target), zap.Error(renderErr))
		} else if rendered != "" {
			html = rendered
		}
	}

	return Result{HTML: html, StatusCode: resp.StatusCode}
}

// looksLikeScriptShell flags documents that are mostly script with almost no
// markup content, the signature of a client-rendered SPA shell.
func looksLikeScriptShell(html string) bool {
	if len(html) == 0 {
		return false
	}
	lower := strings.ToLower(html)
	if !strings.Contains(lower, "<script") {
		return false
	}
	bodyStart := strings.Index(lower, "<body")
	if bodyStart == -1 {
		return false
	}
	body := lower[bodyStart:]
	stripped := body
	for {
		open := strings.Index(stripped, "<script")
		if open == -1 {
			break
		}
		end := strings.Index(stripped[open:], "</script>")
		if end == -1 {
			stripped = stripped[:open]
			break
		}
		stripped = stripped[:open] + stripped[open+end+len("</script>"):]
	}
	// Count characters outside tags.
	var visible int
	inTag := false
	for _, r := range stripped {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag && r != ' ' && r != '\n' && r != '\t':
			visible++
		}
	}
	return visible < 200
}
