package analyze

import (
	"fmt"

	"github.com/georepute/domain-intelligence/internal/domain"
)

// Insights are the strengths/weaknesses narrative derived from the scored
// stages.
type Insights struct {
	Strengths  []string
	Weaknesses []string
}

// BuildInsights derives strengths and weaknesses from the SEO report, site
// structure, and toxicity findings.
func BuildInsights(seo domain.SEOReport, structure domain.SiteStructure, toxic []string) Insights {
	var insights Insights

	if seo.Score >= 70 {
		insights.Strengths = append(insights.Strengths, "Strong on-page SEO fundamentals")
	} else if seo.Score < 40 {
		insights.Weaknesses = append(insights.Weaknesses, "Weak on-page SEO fundamentals")
	}

	if structure.HasSitemap {
		insights.Strengths = append(insights.Strengths, "Sitemap available for search engines")
	} else {
		insights.Weaknesses = append(insights.Weaknesses, "No sitemap discovered")
	}

	if structure.CleanURLs {
		insights.Strengths = append(insights.Strengths, "Clean, readable URL structure")
	} else {
		insights.Weaknesses = append(insights.Weaknesses, "URLs contain query strings or unfriendly characters")
	}

	if structure.AvgInternalLinks >= 5 {
		insights.Strengths = append(insights.Strengths, "Healthy internal linking between pages")
	} else if structure.TotalPages > 1 {
		insights.Weaknesses = append(insights.Weaknesses, "Sparse internal linking limits crawlability")
	}

	if structure.TotalPages >= 10 {
		insights.Strengths = append(insights.Strengths, "Substantial site content footprint")
	} else if structure.TotalPages <= 2 {
		insights.Weaknesses = append(insights.Weaknesses, "Very small site; limited content for search engines")
	}

	schemaPages := 0
	for _, page := range seo.Pages {
		if len(page.Meta.SchemaTypes) > 0 {
			schemaPages++
		}
	}
	if len(seo.Pages) > 0 && schemaPages == len(seo.Pages) {
		insights.Strengths = append(insights.Strengths, "Structured data present across all pages")
	} else if schemaPages == 0 && len(seo.Pages) > 0 {
		insights.Weaknesses = append(insights.Weaknesses, "No schema.org structured data found")
	}

	if len(toxic) > 0 {
		insights.Weaknesses = append(insights.Weaknesses, fmt.Sprintf("%d toxic SEO pattern(s) detected", len(toxic)))
	}

	return insights
}

// AggregateHeadings computes cross-page heading statistics, including H1
// texts that appear on more than one page.
func AggregateHeadings(headings []domain.Heading) domain.HeadingStats {
	stats := domain.HeadingStats{}
	h1Pages := make(map[string]map[string]bool)
	var h1Order []string

	for _, h := range headings {
		switch h.Level {
		case 1:
			stats.H1Count++
			if h.Text != "" {
				if h1Pages[h.Text] == nil {
					h1Pages[h.Text] = make(map[string]bool)
					h1Order = append(h1Order, h.Text)
				}
				h1Pages[h.Text][h.PageURL] = true
			}
		case 2:
			stats.H2Count++
		case 3:
			stats.H3Count++
		}
	}

	for _, text := range h1Order {
		if len(h1Pages[text]) > 1 {
			stats.DuplicateH1s = append(stats.DuplicateH1s, text)
		}
	}
	return stats
}

// maxRecommendations caps the final prioritized list the dashboard shows.
const maxRecommendations = 12

// PrioritizeRecommendations merges stage outputs into one ranked list:
// toxicity fixes first, then SEO rule failures, then structural gaps.
func PrioritizeRecommendations(seo domain.SEOReport, structure domain.SiteStructure, toxic []string, geo domain.Geography) []string {
	var recs []string
	seen := make(map[string]bool)
	add := func(rec string) {
		if rec != "" && !seen[rec] {
			seen[rec] = true
			recs = append(recs, rec)
		}
	}

	for _, finding := range toxic {
		add("Fix: " + finding)
	}
	for _, rec := range seo.Recommendations {
		add(rec)
	}
	if !structure.HasSitemap {
		add("Publish a sitemap.xml and reference it from robots.txt")
	}
	if !structure.CleanURLs {
		add("Adopt clean, keyword-friendly URL paths")
	}
	if structure.TotalPages > 1 && structure.AvgInternalLinks < 5 {
		add("Increase internal linking between related pages")
	}
	if geo.Primary == "" {
		add("Add location signals so search engines can place your primary market")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
