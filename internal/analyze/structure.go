// Package analyze turns crawled pages into SEO scores, site topology
// metrics, geography, toxicity findings, and business classification.
package analyze

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/georepute/domain-intelligence/internal/crawl"
	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/fetch"
	"github.com/georepute/domain-intelligence/internal/urlutil"
)

var cleanPathRe = regexp.MustCompile(`(?i)^[a-z0-9/_-]*$`)

// AnalyzeStructure aggregates one crawl run into site topology metrics.
// The fetcher is used to probe the well-known sitemap locations when
// robots.txt did not advertise one.
func AnalyzeStructure(ctx context.Context, out *crawl.Outcome, fetcher *fetch.Fetcher, baseURL string) domain.SiteStructure {
	structure := domain.SiteStructure{
		TotalPages:    len(out.Pages),
		FailedFetches: out.FailedFetches,
		MaxDepth:      out.MaxDepthSeen,
		PagesPerDepth: make(map[int]int),
		CleanURLs:     true,
	}

	for _, page := range out.Pages {
		structure.PagesPerDepth[page.Depth]++
		if !cleanURL(page.URL) {
			structure.CleanURLs = false
		}
	}

	for _, links := range out.Graph {
		structure.InternalLinks += len(links)
	}
	if len(out.Pages) > 0 {
		structure.AvgInternalLinks = float64(structure.InternalLinks) / float64(len(out.Pages))
	}

	structure.HasSitemap = len(out.Sitemaps) > 0 || probeSitemap(ctx, fetcher, baseURL)
	return structure
}

// cleanURL is true when the path has no query string and uses only
// letters, digits, slashes, underscores and hyphens, case-insensitively.
func cleanURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.RawQuery != "" {
		return false
	}
	return cleanPathRe.MatchString(parsed.Path)
}

// probeSitemap checks the two well-known sitemap locations.
func probeSitemap(ctx context.Context, fetcher *fetch.Fetcher, baseURL string) bool {
	if fetcher == nil {
		return false
	}
	base := strings.TrimSuffix(urlutil.EnsureScheme(baseURL), "/")
	for _, path := range []string{"/sitemap.xml", "/sitemap_index.xml"} {
		if res := fetcher.Fetch(ctx, base+path); res.StatusCode == http.StatusOK && res.HTML != "" {
			return true
		}
	}
	return false
}
