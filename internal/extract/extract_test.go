package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Acme Widgets</title>
<meta name="description" content="Widgets for every occasion">
<meta name="keywords" content="widgets, acme">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta property="og:title" content="Acme Widgets">
<meta name="twitter:card" content="summary">
<link rel="canonical" href="https://acme.com/">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"Acme"}</script>
<style>.hidden { color: red; }</style>
</head>
<body>
<h1>Welcome to Acme</h1>
<h2>Our widgets</h2>
<h3>Premium line</h3>
<script>console.log("ignore me");</script>
<p>Hand-made widgets &amp; gadgets.</p>
<a href="/about">About</a>
<a href="/about">About again</a>
<a href="https://acme.com/contact">Contact</a>
<a href="https://blog.acme.com/news">Blog</a>
<a href="https://other.com/elsewhere">Elsewhere</a>
<a href="#section">Jump</a>
<a href="javascript:void(0)">JS</a>
<a href="mailto:hi@acme.com">Mail</a>
<a href="https://spam.com/x" rel="nofollow">Spam</a>
<img src="/a.png" alt="widget photo">
<img src="/b.png" alt="">
<img src="/c.png">
</body>
</html>`

func parsers(t *testing.T) map[string]Parser {
	t.Helper()
	return map[string]Parser{"goquery": &docParser{}, "fallback": &fallbackParser{}}
}

func TestLinksSameDomainDeduplicated(t *testing.T) {
	for name, p := range parsers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse(samplePage)
			require.NoError(t, err)

			links := doc.Links("https://acme.com/", "acme.com")
			assert.Contains(t, links, "https://acme.com/about")
			assert.Contains(t, links, "https://acme.com/contact")
			assert.Contains(t, links, "https://blog.acme.com/news") // subdomain
			assert.NotContains(t, links, "https://other.com/elsewhere")

			seen := make(map[string]int)
			for _, l := range links {
				seen[l]++
			}
			for url, count := range seen {
				assert.Equal(t, 1, count, "duplicate link %s", url)
			}
		})
	}
}

func TestTextStripsScriptsAndUnescapes(t *testing.T) {
	for name, p := range parsers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse(samplePage)
			require.NoError(t, err)

			text := doc.Text()
			assert.Contains(t, text, "Hand-made widgets & gadgets.")
			assert.NotContains(t, text, "ignore me")
			assert.NotContains(t, text, "color: red")
		})
	}
}

func TestHeadingsOrderedWithLevels(t *testing.T) {
	for name, p := range parsers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse(samplePage)
			require.NoError(t, err)

			headings := doc.Headings("https://acme.com/")
			require.Len(t, headings, 3)
			assert.Equal(t, 1, headings[0].Level)
			assert.Equal(t, "Welcome to Acme", headings[0].Text)
			assert.Equal(t, 2, headings[1].Level)
			assert.Equal(t, 3, headings[2].Level)
			assert.Equal(t, "https://acme.com/", headings[0].PageURL)
			assert.Less(t, headings[0].Position, headings[2].Position)
		})
	}
}

func TestFallbackHeadingsSkipVoidElements(t *testing.T) {
	markup := `<html><body><h1>Hello<br>World</h1><p>trailing paragraph text</p><h2>Second</h2></body></html>`
	doc, err := (&fallbackParser{}).Parse(markup)
	require.NoError(t, err)

	headings := doc.Headings("https://acme.com/")
	require.Len(t, headings, 2)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, "Hello World", headings[0].Text)
	assert.Equal(t, 2, headings[1].Level)
	assert.Equal(t, "Second", headings[1].Text)
}

func TestMetaSignals(t *testing.T) {
	for name, p := range parsers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse(samplePage)
			require.NoError(t, err)

			meta := doc.Meta()
			assert.Equal(t, "Acme Widgets", meta.Title)
			assert.Equal(t, "Widgets for every occasion", meta.Description)
			assert.True(t, meta.HasKeywords)
			assert.True(t, meta.HasOpenGraph)
			assert.True(t, meta.HasTwitterCard)
			assert.True(t, meta.HasViewport)
			assert.Equal(t, "https://acme.com/", meta.Canonical)
			assert.Equal(t, []string{"Organization"}, meta.SchemaTypes)
		})
	}
}

func TestImageAudit(t *testing.T) {
	for name, p := range parsers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse(samplePage)
			require.NoError(t, err)

			audit := doc.Images()
			assert.Equal(t, 3, audit.Total)
			assert.Equal(t, 1, audit.WithAlt)
			assert.Equal(t, 2, audit.MissingAlt)
		})
	}
}

func TestLinkCounts(t *testing.T) {
	for name, p := range parsers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse(samplePage)
			require.NoError(t, err)

			counts := doc.LinkCounts("acme.com")
			// /about x2, /contact, blog subdomain, relative counted internal
			assert.Equal(t, 4, counts.Internal)
			assert.Equal(t, 2, counts.External) // other.com + spam.com
			assert.Equal(t, 1, counts.Nofollow)
		})
	}
}

func TestMalformedDocumentDegradesGracefully(t *testing.T) {
	garbage := "<<<<not really html>>>> <a href='"
	for name, p := range parsers(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := p.Parse(garbage)
			require.NoError(t, err)
			assert.NotPanics(t, func() {
				doc.Links("https://acme.com/", "acme.com")
				doc.Text()
				doc.Headings("https://acme.com/")
				doc.Meta()
				doc.Images()
			})
		})
	}
}

func TestChainFallsBack(t *testing.T) {
	chain := NewChain()
	doc := chain.Parse(samplePage)
	require.NotNil(t, doc)
	assert.Equal(t, "Acme Widgets", doc.Meta().Title)
}

func TestParseJSONLDGraph(t *testing.T) {
	blocks := []string{
		`{"@graph":[{"@type":"WebSite"},{"@type":["Organization","LocalBusiness"]}]}`,
		`not json at all`,
	}
	types := parseJSONLD(blocks)
	assert.ElementsMatch(t, []string{"WebSite", "Organization", "LocalBusiness"}, types)
}
