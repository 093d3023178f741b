// Package extract turns raw HTML into the structured signals the analysis
// stages consume. Two parser tiers sit behind one interface: a goquery
// document parser and a tokenizer/regex fallback for markup the structured
// parser rejects. Extraction degrades to empty results, never errors that
// abort a page.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/georepute/domain-intelligence/internal/domain"
)

// Document exposes the extraction operations over one parsed page.
type Document interface {
	Links(pageURL string, baseHost string) []string
	Text() string
	Headings(pageURL string) []domain.Heading
	Meta() domain.MetaSignals
	Images() domain.ImageAudit
	LinkCounts(baseHost string) domain.LinkCounts
}

// Parser builds a Document from raw HTML.
type Parser interface {
	Parse(htmlStr string) (Document, error)
}

// Chain tries the structured parser first and falls back to the regex tier
// when it fails. The fallback tier itself never fails.
type Chain struct {
	primary  Parser
	fallback Parser
}

// NewChain returns the default two-tier parser.
func NewChain() *Chain {
	return &Chain{primary: &docParser{}, fallback: &fallbackParser{}}
}

// Parse returns a Document for the page, degrading through the tiers.
func (c *Chain) Parse(htmlStr string) Document {
	if doc, err := c.primary.Parse(htmlStr); err == nil {
		return doc
	}
	doc, _ := c.fallback.Parse(htmlStr)
	return doc
}

// schemaTypes collects @type values from a decoded JSON-LD payload,
// descending into @graph nodes and arrays.
func schemaTypes(decoded interface{}, out map[string]bool) {
	switch v := decoded.(type) {
	case map[string]interface{}:
		if t, ok := v["@type"]; ok {
			schemaTypeValue(t, out)
		}
		if graph, ok := v["@graph"]; ok {
			schemaTypes(graph, out)
		}
	case []interface{}:
		for _, item := range v {
			schemaTypes(item, out)
		}
	}
}

func schemaTypeValue(t interface{}, out map[string]bool) {
	switch v := t.(type) {
	case string:
		if v != "" {
			out[v] = true
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out[s] = true
			}
		}
	}
}

// parseJSONLD extracts deduplicated schema.org @type values from raw
// JSON-LD block contents. Malformed blocks are skipped.
func parseJSONLD(blocks []string) []string {
	found := make(map[string]bool)
	for _, block := range blocks {
		var decoded interface{}
		if err := json.Unmarshal([]byte(block), &decoded); err != nil {
			continue
		}
		schemaTypes(decoded, found)
	}
	if len(found) == 0 {
		return nil
	}
	types := make([]string, 0, len(found))
	for t := range found {
		types = append(types, t)
	}
	return types
}

// skippableHref reports whether an anchor target should be ignored:
// fragment-only, javascript:, mailto: and tel: links.
func skippableHref(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:")
}

// responsiveHint is the naive responsive-design heuristic over raw markup.
func responsiveHint(htmlStr string) bool {
	lower := strings.ToLower(htmlStr)
	return strings.Contains(lower, "max-width") || strings.Contains(lower, "responsive")
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
