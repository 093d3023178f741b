package analyze

import (
	"regexp"
	"strings"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/extract"
)

// Toxic-pattern thresholds. Each heuristic is independent; any subset may
// fire for a given document.
const (
	ctaSpamThreshold     = 10
	stuffingThreshold    = 50
	thinContentWords     = 100
	brokenLinksThreshold = 5
)

var ctaPhrases = []string{
	"buy now", "act now", "order now", "limited time", "don't miss out", "click here",
}

var (
	metaRefreshRe = regexp.MustCompile(`(?i)<meta[^>]+http-equiv\s*=\s*["']?refresh`)
	displayNoneRe = regexp.MustCompile(`(?i)style\s*=\s*["'][^"']*display\s*:\s*none`)
	errorHrefRe   = regexp.MustCompile(`(?i)href\s*=\s*["'][^"']*(404|/error)[^"']*["']`)
	wordRe        = regexp.MustCompile(`[a-z']+`)
)

// Words too common to count as stuffing candidates.
var stuffingStopwords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "have": true,
	"will": true, "your": true, "more": true, "about": true, "their": true,
	"what": true, "when": true, "were": true, "been": true, "they": true,
}

// DetectToxicPage runs every heuristic against one document and returns a
// human-readable finding per triggered heuristic.
func DetectToxicPage(htmlStr, text string) []string {
	var findings []string
	lowerText := strings.ToLower(text)

	ctaCount := 0
	for _, phrase := range ctaPhrases {
		ctaCount += strings.Count(lowerText, phrase)
	}
	if ctaCount > ctaSpamThreshold {
		findings = append(findings, "Excessive promotional call-to-action phrases suggest spammy content")
	}

	if word, count := mostRepeatedWord(lowerText); count > stuffingThreshold {
		findings = append(findings, "Keyword stuffing detected: \""+word+"\" is repeated excessively")
	}

	if displayNoneRe.MatchString(htmlStr) {
		findings = append(findings, "Hidden content via display:none may indicate cloaking")
	}

	if metaRefreshRe.MatchString(htmlStr) {
		findings = append(findings, "Meta refresh redirect suggests a doorway page")
	}

	if len(strings.Fields(text)) < thinContentWords {
		findings = append(findings, "Thin content: fewer than 100 words of visible text")
	}

	if len(errorHrefRe.FindAllStringIndex(htmlStr, -1)) > brokenLinksThreshold {
		findings = append(findings, "Multiple links point at error pages")
	}

	return findings
}

// mostRepeatedWord returns the most frequent non-stopword of at least four
// characters and its count.
func mostRepeatedWord(lowerText string) (string, int) {
	counts := make(map[string]int)
	for _, word := range wordRe.FindAllString(lowerText, -1) {
		if len(word) < 4 || stuffingStopwords[word] {
			continue
		}
		counts[word]++
	}
	best, bestCount := "", 0
	for word, count := range counts {
		if count > bestCount || (count == bestCount && word < best) {
			best, bestCount = word, count
		}
	}
	return best, bestCount
}

// DetectToxicPatterns unions findings across every usable crawled page,
// preserving first-seen order.
func DetectToxicPatterns(pages []domain.CrawledPage, parser *extract.Chain) []string {
	seen := make(map[string]bool)
	var findings []string
	for _, page := range pages {
		if !page.Usable() {
			continue
		}
		text := parser.Parse(page.HTML).Text()
		for _, finding := range DetectToxicPage(page.HTML, text) {
			if !seen[finding] {
				seen[finding] = true
				findings = append(findings, finding)
			}
		}
	}
	return findings
}
