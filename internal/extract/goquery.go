package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/urlutil"
)

// docParser is the structured tier, backed by goquery.
type docParser struct{}

func (p *docParser) Parse(htmlStr string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}
	return &gqDocument{doc: doc, raw: htmlStr}, nil
}

type gqDocument struct {
	doc *goquery.Document
	raw string
}

func (d *gqDocument) Links(pageURL string, baseHost string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if skippableHref(href) {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		normalized, err := urlutil.Normalize(resolved)
		if err != nil {
			return
		}
		if !urlutil.SameDomain(normalized, baseHost) {
			return
		}
		if !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	})
	return links
}

func (d *gqDocument) Text() string {
	clone := d.doc.Clone()
	clone.Find("script, style, noscript").Remove()
	return collapseWhitespace(clone.Find("body").Text())
}

func (d *gqDocument) Headings(pageURL string) []domain.Heading {
	var headings []domain.Heading
	d.doc.Find("h1, h2, h3").Each(func(i int, s *goquery.Selection) {
		level := 0
		switch goquery.NodeName(s) {
		case "h1":
			level = 1
		case "h2":
			level = 2
		case "h3":
			level = 3
		}
		if level == 0 {
			return
		}
		headings = append(headings, domain.Heading{
			PageURL:  pageURL,
			Level:    level,
			Position: i,
			Text:     collapseWhitespace(s.Text()),
		})
	})
	return headings
}

func (d *gqDocument) Meta() domain.MetaSignals {
	meta := domain.MetaSignals{
		Title:          collapseWhitespace(d.doc.Find("title").First().Text()),
		HasViewport:    d.doc.Find(`meta[name="viewport"]`).Length() > 0,
		ResponsiveHint: responsiveHint(d.raw),
	}

	meta.Description, _ = d.doc.Find(`meta[name="description"]`).First().Attr("content")
	meta.Description = strings.TrimSpace(meta.Description)

	keywords, _ := d.doc.Find(`meta[name="keywords"]`).First().Attr("content")
	meta.HasKeywords = strings.TrimSpace(keywords) != ""

	d.doc.Find("meta[property]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		prop, _ := s.Attr("property")
		if strings.HasPrefix(prop, "og:") {
			meta.HasOpenGraph = true
			return false
		}
		return true
	})

	d.doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if strings.HasPrefix(name, "twitter:") {
			meta.HasTwitterCard = true
			return false
		}
		return true
	})

	meta.Canonical, _ = d.doc.Find(`link[rel="canonical"]`).First().Attr("href")
	meta.Canonical = strings.TrimSpace(meta.Canonical)

	var blocks []string
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	meta.SchemaTypes = parseJSONLD(blocks)

	return meta
}

func (d *gqDocument) Images() domain.ImageAudit {
	audit := domain.ImageAudit{}
	d.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		audit.Total++
		if alt, _ := s.Attr("alt"); strings.TrimSpace(alt) != "" {
			audit.WithAlt++
		}
	})
	audit.MissingAlt = audit.Total - audit.WithAlt
	return audit
}

func (d *gqDocument) LinkCounts(baseHost string) domain.LinkCounts {
	counts := domain.LinkCounts{}
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if skippableHref(href) {
			return
		}
		if rel, _ := s.Attr("rel"); strings.Contains(strings.ToLower(rel), "nofollow") {
			counts.Nofollow++
		}
		lower := strings.ToLower(strings.TrimSpace(href))
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			if urlutil.SameDomain(lower, baseHost) {
				counts.Internal++
			} else {
				counts.External++
			}
			return
		}
		// Relative links stay on the crawled domain.
		counts.Internal++
	})
	return counts
}
