package analyze

import (
	"strings"
	"testing"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/extract"
	"github.com/stretchr/testify/assert"
)

// filler produces n distinct words so thin-content does not fire.
func filler(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "filler" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26))
	}
	return strings.Join(words, " ")
}

func TestKeywordStuffingFiresAlone(t *testing.T) {
	text := strings.Repeat("widget ", 60) + filler(120)
	html := "<html><body><p>" + text + "</p></body></html>"

	findings := DetectToxicPage(html, text)
	assert.Len(t, findings, 1, "expected only the stuffing heuristic to fire: %v", findings)
	assert.Contains(t, findings[0], "Keyword stuffing")
}

func TestCloakingDetection(t *testing.T) {
	html := `<html><body><div style="display:none">hidden keywords</div><p>` + filler(150) + `</p></body></html>`
	findings := DetectToxicPage(html, filler(150))
	assert.Len(t, findings, 1)
	assert.Contains(t, findings[0], "cloaking")
}

func TestMetaRefreshDetection(t *testing.T) {
	html := `<html><head><meta http-equiv="refresh" content="0;url=https://elsewhere.com"></head><body><p>` + filler(150) + `</p></body></html>`
	findings := DetectToxicPage(html, filler(150))
	assert.Len(t, findings, 1)
	assert.Contains(t, findings[0], "doorway")
}

func TestThinContentDetection(t *testing.T) {
	text := "just a few words here"
	findings := DetectToxicPage("<html><body><p>"+text+"</p></body></html>", text)
	assert.Len(t, findings, 1)
	assert.Contains(t, findings[0], "Thin content")
}

func TestCTASpamDetection(t *testing.T) {
	text := strings.Repeat("buy now! ", 12) + filler(150)
	findings := DetectToxicPage("<html><body>"+text+"</body></html>", text)
	assert.Len(t, findings, 1)
	assert.Contains(t, findings[0], "call-to-action")
}

func TestBrokenLinkDensityDetection(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 7; i++ {
		b.WriteString(`<a href="/404-page">gone</a>`)
	}
	b.WriteString("<p>" + filler(150) + "</p></body></html>")

	findings := DetectToxicPage(b.String(), filler(150))
	assert.Len(t, findings, 1)
	assert.Contains(t, findings[0], "error pages")
}

func TestCleanPageHasNoFindings(t *testing.T) {
	text := filler(200)
	findings := DetectToxicPage("<html><body><p>"+text+"</p></body></html>", text)
	assert.Empty(t, findings)
}

func TestDetectToxicPatternsUnionsAcrossPages(t *testing.T) {
	thin := domain.CrawledPage{
		URL: "https://a.com/thin", StatusCode: 200,
		HTML: "<html><body><p>short</p></body></html>", Depth: 0,
	}
	cloaked := domain.CrawledPage{
		URL: "https://a.com/cloak", StatusCode: 200,
		HTML: `<html><body><div style="display:none">x</div><p>` + filler(150) + `</p></body></html>`,
	}
	failed := domain.CrawledPage{URL: "https://a.com/broken", StatusCode: 500}

	findings := DetectToxicPatterns([]domain.CrawledPage{thin, cloaked, failed}, extract.NewChain())
	assert.Len(t, findings, 2)
}
