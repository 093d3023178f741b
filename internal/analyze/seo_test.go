package analyze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/extract"
)

func TestAnalyzePageAdditiveScore(t *testing.T) {
	title := strings.Repeat("t", 45)
	desc := strings.Repeat("d", 140)
	html := `<html><head>
<title>` + title + `</title>
<meta name="description" content="` + desc + `">
<script type="application/ld+json">{"@type":"Organization"}</script>
</head><body><h1>One heading</h1></body></html>`

	analyzer := NewSEOAnalyzer(extract.NewChain())
	report := analyzer.AnalyzePage("https://example.com/", html, "example.com")

	// title 10+5, description 10+5, single H1 10, schema 10, HTTPS 10
	// plus the vacuous image-alt rule; the additive floor is 60.
	assert.GreaterOrEqual(t, report.Score, 60)
	assert.Equal(t, 1, report.H1Count)
	assert.True(t, report.HTTPS)
	assert.Equal(t, 45, report.TitleLength)
	assert.Equal(t, 140, report.DescriptionLength)
}

func TestAnalyzePageLengthsCountRunes(t *testing.T) {
	title := strings.Repeat("é", 45)
	desc := strings.Repeat("ü", 140)
	html := `<html><head>
<title>` + title + `</title>
<meta name="description" content="` + desc + `">
</head><body><h1>Überschrift</h1></body></html>`

	analyzer := NewSEOAnalyzer(extract.NewChain())
	report := analyzer.AnalyzePage("https://example.com/", html, "example.com")

	assert.Equal(t, 45, report.TitleLength)
	assert.Equal(t, 140, report.DescriptionLength)
	joined := strings.Join(report.Recommendations, "\n")
	assert.NotContains(t, joined, "title tag")
	assert.NotContains(t, joined, "meta description")
}

func TestAnalyzePageRecommendationsFromNegatives(t *testing.T) {
	analyzer := NewSEOAnalyzer(extract.NewChain())
	report := analyzer.AnalyzePage("http://example.com/", "<html><body><p>bare</p></body></html>", "example.com")

	assert.Less(t, report.Score, 30)
	joined := strings.Join(report.Recommendations, "\n")
	assert.Contains(t, joined, "title tag")
	assert.Contains(t, joined, "meta description")
	assert.Contains(t, joined, "H1")
	assert.Contains(t, joined, "HTTPS")
}

func TestAnalyzePageScoreCappedAt100(t *testing.T) {
	title := strings.Repeat("t", 45)
	desc := strings.Repeat("d", 140)
	html := `<html><head>
<title>` + title + `</title>
<meta name="description" content="` + desc + `">
<meta name="viewport" content="width=device-width">
<meta property="og:title" content="x">
<link rel="canonical" href="https://example.com/">
<script type="application/ld+json">{"@type":"Organization"}</script>
</head><body>
<h1>One</h1><h2>Two</h2>
<a href="/other">internal</a>
<img src="/a.png" alt="described">
</body></html>`

	analyzer := NewSEOAnalyzer(extract.NewChain())
	report := analyzer.AnalyzePage("https://example.com/", html, "example.com")
	assert.LessOrEqual(t, report.Score, 100)
	assert.GreaterOrEqual(t, report.Score, 90)
	assert.Empty(t, report.Recommendations)
}

func TestAggregateMeanScore(t *testing.T) {
	analyzer := NewSEOAnalyzer(extract.NewChain())
	reports := []domain.SEOPageReport{
		{Score: 80, Recommendations: []string{"Add alt text to images"}},
		{Score: 60, Recommendations: []string{"Add alt text to images", "Add a canonical URL"}},
		{Score: 70},
	}
	agg := analyzer.Aggregate(reports)
	assert.Equal(t, 70, agg.Score)
	// The recommendation raised on more pages ranks first.
	require.NotEmpty(t, agg.Recommendations)
	assert.Equal(t, "Add alt text to images", agg.Recommendations[0])
}

func TestAggregateEmpty(t *testing.T) {
	analyzer := NewSEOAnalyzer(extract.NewChain())
	agg := analyzer.Aggregate(nil)
	assert.Equal(t, 0, agg.Score)
	assert.Empty(t, agg.Recommendations)
}
