package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/urlutil"
)

// fallbackParser is the regex/tokenizer tier. It accepts any input and
// yields best-effort signals, so Parse never returns an error.
type fallbackParser struct{}

func (p *fallbackParser) Parse(htmlStr string) (Document, error) {
	return &fbDocument{raw: htmlStr}, nil
}

type fbDocument struct {
	raw string
}

var (
	fbTitleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	fbMetaTagRe = regexp.MustCompile(`(?is)<meta\s+[^>]*>`)
	fbLinkTagRe = regexp.MustCompile(`(?is)<link\s+[^>]*>`)
	fbAttrRe    = regexp.MustCompile(`(?is)([a-zA-Z-]+)\s*=\s*["']([^"']*)["']`)
	fbJSONLDRe  = regexp.MustCompile(`(?is)<script[^>]*type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)
	fbStripRe   = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	fbTagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
)

// Void elements never produce an end tag, so they must not count toward
// nesting depth when walking a heading's inner content.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// tagAttrs parses the attributes out of one raw tag string.
func tagAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range fbAttrRe.FindAllStringSubmatch(tag, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}
	return attrs
}

func (d *fbDocument) Links(pageURL string, baseHost string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	tokenizer := html.NewTokenizer(strings.NewReader(d.raw))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return links
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		token := tokenizer.Token()
		if token.Data != "a" {
			continue
		}
		for _, attr := range token.Attr {
			if attr.Key != "href" || skippableHref(attr.Val) {
				continue
			}
			ref, err := url.Parse(strings.TrimSpace(attr.Val))
			if err != nil {
				continue
			}
			normalized, err := urlutil.Normalize(base.ResolveReference(ref).String())
			if err != nil {
				continue
			}
			if !urlutil.SameDomain(normalized, baseHost) {
				continue
			}
			if !seen[normalized] {
				seen[normalized] = true
				links = append(links, normalized)
			}
		}
	}
}

func (d *fbDocument) Text() string {
	stripped := fbStripRe.ReplaceAllString(d.raw, " ")
	stripped = fbTagRe.ReplaceAllString(stripped, " ")
	stripped = html.UnescapeString(stripped)
	return collapseWhitespace(stripped)
}

func (d *fbDocument) Headings(pageURL string) []domain.Heading {
	var headings []domain.Heading
	tokenizer := html.NewTokenizer(strings.NewReader(d.raw))
	position := 0
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return headings
		}
		if tt != html.StartTagToken {
			continue
		}
		token := tokenizer.Token()
		var level int
		switch token.Data {
		case "h1":
			level = 1
		case "h2":
			level = 2
		case "h3":
			level = 3
		default:
			continue
		}
		var text strings.Builder
		depth := 1
		for depth > 0 {
			inner := tokenizer.Next()
			if inner == html.ErrorToken {
				break
			}
			switch inner {
			case html.TextToken:
				text.WriteString(tokenizer.Token().Data)
			case html.StartTagToken:
				if voidElements[tokenizer.Token().Data] {
					text.WriteString(" ")
				} else {
					depth++
				}
			case html.EndTagToken:
				depth--
			}
		}
		headings = append(headings, domain.Heading{
			PageURL:  pageURL,
			Level:    level,
			Position: position,
			Text:     collapseWhitespace(text.String()),
		})
		position++
	}
}

func (d *fbDocument) Meta() domain.MetaSignals {
	meta := domain.MetaSignals{ResponsiveHint: responsiveHint(d.raw)}

	if m := fbTitleRe.FindStringSubmatch(d.raw); m != nil {
		meta.Title = collapseWhitespace(html.UnescapeString(m[1]))
	}

	for _, tag := range fbMetaTagRe.FindAllString(d.raw, -1) {
		attrs := tagAttrs(tag)
		name := strings.ToLower(attrs["name"])
		property := strings.ToLower(attrs["property"])
		switch {
		case name == "description":
			if meta.Description == "" {
				meta.Description = strings.TrimSpace(attrs["content"])
			}
		case name == "keywords":
			if strings.TrimSpace(attrs["content"]) != "" {
				meta.HasKeywords = true
			}
		case name == "viewport":
			meta.HasViewport = true
		case strings.HasPrefix(name, "twitter:"):
			meta.HasTwitterCard = true
		case strings.HasPrefix(property, "og:"):
			meta.HasOpenGraph = true
		}
	}

	for _, tag := range fbLinkTagRe.FindAllString(d.raw, -1) {
		attrs := tagAttrs(tag)
		if strings.EqualFold(attrs["rel"], "canonical") && meta.Canonical == "" {
			meta.Canonical = strings.TrimSpace(attrs["href"])
		}
	}

	var blocks []string
	for _, m := range fbJSONLDRe.FindAllStringSubmatch(d.raw, -1) {
		blocks = append(blocks, m[1])
	}
	meta.SchemaTypes = parseJSONLD(blocks)

	return meta
}

func (d *fbDocument) Images() domain.ImageAudit {
	audit := domain.ImageAudit{}
	tokenizer := html.NewTokenizer(strings.NewReader(d.raw))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			audit.MissingAlt = audit.Total - audit.WithAlt
			return audit
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		token := tokenizer.Token()
		if token.Data != "img" {
			continue
		}
		audit.Total++
		for _, attr := range token.Attr {
			if attr.Key == "alt" && strings.TrimSpace(attr.Val) != "" {
				audit.WithAlt++
				break
			}
		}
	}
}

func (d *fbDocument) LinkCounts(baseHost string) domain.LinkCounts {
	counts := domain.LinkCounts{}
	tokenizer := html.NewTokenizer(strings.NewReader(d.raw))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return counts
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		token := tokenizer.Token()
		if token.Data != "a" {
			continue
		}
		var href, rel string
		for _, attr := range token.Attr {
			switch attr.Key {
			case "href":
				href = attr.Val
			case "rel":
				rel = attr.Val
			}
		}
		if skippableHref(href) {
			continue
		}
		if strings.Contains(strings.ToLower(rel), "nofollow") {
			counts.Nofollow++
		}
		lower := strings.ToLower(strings.TrimSpace(href))
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			if urlutil.SameDomain(lower, baseHost) {
				counts.Internal++
			} else {
				counts.External++
			}
			continue
		}
		counts.Internal++
	}
}
