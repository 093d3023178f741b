package analyze

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/extract"
)

// SEOAnalyzer produces rule-based per-page reports and the domain-level
// aggregate.
type SEOAnalyzer struct {
	parser *extract.Chain
}

// NewSEOAnalyzer creates an analyzer over the given parser chain.
func NewSEOAnalyzer(parser *extract.Chain) *SEOAnalyzer {
	return &SEOAnalyzer{parser: parser}
}

// AnalyzePage scores one page additively against fixed weights, capped at
// 100, and derives recommendations from the failed rules.
func (a *SEOAnalyzer) AnalyzePage(pageURL, htmlStr, baseHost string) domain.SEOPageReport {
	doc := a.parser.Parse(htmlStr)
	meta := doc.Meta()
	headings := doc.Headings(pageURL)
	links := doc.LinkCounts(baseHost)
	images := doc.Images()

	report := domain.SEOPageReport{
		URL:               pageURL,
		Meta:              meta,
		TitleLength:       utf8.RuneCountInString(meta.Title),
		DescriptionLength: utf8.RuneCountInString(meta.Description),
		Links:             links,
		Images:            images,
		HTTPS:             strings.HasPrefix(strings.ToLower(pageURL), "https://"),
	}
	for _, h := range headings {
		switch h.Level {
		case 1:
			report.H1Count++
		case 2:
			report.H2Count++
		case 3:
			report.H3Count++
		}
	}

	score := 0
	var recs []string

	if meta.Title != "" {
		score += 10
		if report.TitleLength >= 30 && report.TitleLength <= 60 {
			score += 5
		} else {
			recs = append(recs, "Adjust the title tag to 30-60 characters")
		}
	} else {
		recs = append(recs, "Add a title tag (30-60 characters)")
	}

	if meta.Description != "" {
		score += 10
		if report.DescriptionLength >= 120 && report.DescriptionLength <= 160 {
			score += 5
		} else {
			recs = append(recs, "Adjust the meta description to 120-160 characters")
		}
	} else {
		recs = append(recs, "Add a meta description (120-160 characters)")
	}

	switch report.H1Count {
	case 1:
		score += 10
	case 0:
		recs = append(recs, "Add exactly one H1 heading")
	default:
		recs = append(recs, "Use a single H1 heading per page")
	}

	if report.H2Count > 0 {
		score += 5
	} else {
		recs = append(recs, "Structure content with H2 subheadings")
	}

	if meta.HasOpenGraph {
		score += 5
	} else {
		recs = append(recs, "Add Open Graph tags for social sharing")
	}

	if len(meta.SchemaTypes) > 0 {
		score += 10
	} else {
		recs = append(recs, "Add schema.org structured data (JSON-LD)")
	}

	if images.Total == 0 || float64(images.WithAlt)/float64(images.Total) >= 0.8 {
		score += 10
	} else {
		recs = append(recs, "Add alt text to images")
	}

	if meta.HasViewport {
		score += 5
	} else {
		recs = append(recs, "Add a viewport meta tag for mobile devices")
	}

	if report.HTTPS {
		score += 10
	} else {
		recs = append(recs, "Serve the site over HTTPS")
	}

	if meta.Canonical != "" {
		score += 5
	} else {
		recs = append(recs, "Add a canonical URL")
	}

	if links.Internal > 0 {
		score += 5
	} else {
		recs = append(recs, "Add internal links between pages")
	}

	if score > 100 {
		score = 100
	}
	report.Score = score
	report.Recommendations = recs
	return report
}

// Aggregate folds per-page reports into the domain-level report. The score
// is the arithmetic mean of per-page scores; recommendations are ranked by
// how many pages raised them.
func (a *SEOAnalyzer) Aggregate(reports []domain.SEOPageReport) domain.SEOReport {
	agg := domain.SEOReport{Pages: reports}
	if len(reports) == 0 {
		return agg
	}

	total := 0
	counts := make(map[string]int)
	order := make(map[string]int)
	for _, r := range reports {
		total += r.Score
		for _, rec := range r.Recommendations {
			if _, seen := counts[rec]; !seen {
				order[rec] = len(order)
			}
			counts[rec]++
		}
	}
	agg.Score = int(math.Round(float64(total) / float64(len(reports))))

	recs := make([]string, 0, len(counts))
	for rec := range counts {
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if counts[recs[i]] != counts[recs[j]] {
			return counts[recs[i]] > counts[recs[j]]
		}
		return order[recs[i]] < order[recs[j]]
	})
	agg.Recommendations = recs
	return agg
}
