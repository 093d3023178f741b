package analyze

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/georepute/domain-intelligence/internal/domain"
)

// Company stage buckets, smallest first.
const (
	StageStartup    = "startup"
	StageSMB        = "smb"
	StageMidMarket  = "mid-market"
	StageEnterprise = "enterprise"
)

var (
	foundedYearRe   = regexp.MustCompile(`(?i)\b(?:founded|established|since|est\.?)\s*(?:in\s*)?((?:19|20)\d{2})\b`)
	copyrightYearRe = regexp.MustCompile(`(?i)(?:©|&copy;|copyright)\s*((?:19|20)\d{2})`)

	startupWords    = geoRe("startup", "start-up", "seed round", "series a", "pre-seed", "mvp", "early access", "beta")
	smbWords        = geoRe("family owned", "family-owned", "small business", "local business", "our small team")
	midMarketWords  = geoRe("mid-market", "growing team", "series b", "series c", "regional offices", "hundreds of customers")
	enterpriseWords = geoRe("enterprise", "fortune 500", "fortune 100", "global offices", "multinational", "nasdaq", "nyse", "publicly traded", "thousands of employees")

	nicheWords    = geoRe("specialized", "specialised", "boutique", "niche", "artisan", "bespoke")
	regionalWords = geoRe("local", "serving the", "in your area", "nearby", "community")
	nationalWords = geoRe("nationwide", "across the country", "national", "coast to coast")
	globalWords   = geoRe("worldwide", "global", "international", "around the world", "all countries", "every continent")
)

// ClassifyStage buckets the business by keyword cues combined with the
// structural size of the crawled site.
func ClassifyStage(text string, pageCount int) string {
	scores := map[string]int{
		StageStartup:    len(startupWords.FindAllStringIndex(text, -1)) * 2,
		StageSMB:        len(smbWords.FindAllStringIndex(text, -1)) * 2,
		StageMidMarket:  len(midMarketWords.FindAllStringIndex(text, -1)) * 2,
		StageEnterprise: len(enterpriseWords.FindAllStringIndex(text, -1)) * 2,
	}

	// A company founded within the last five years leans startup.
	if year := earliestYear(text, foundedYearRe); year > 0 {
		age := time.Now().Year() - year
		switch {
		case age <= 5:
			scores[StageStartup] += 3
		case age <= 12:
			scores[StageSMB]++
		default:
			scores[StageMidMarket]++
		}
	}

	switch {
	case pageCount >= 20:
		scores[StageEnterprise]++
		scores[StageMidMarket]++
	case pageCount >= 10:
		scores[StageSMB]++
	default:
		scores[StageStartup]++
	}

	// Strictly-greater comparison over a fixed order keeps ties
	// deterministic.
	best := StageSMB
	bestScore := scores[StageSMB]
	for _, stage := range []string{StageStartup, StageMidMarket, StageEnterprise} {
		if scores[stage] > bestScore {
			best, bestScore = stage, scores[stage]
		}
	}
	return best
}

// EstimateTraffic weighs SEO health, site size, link profile, structured
// data, and domain age into a coarse traffic tier.
func EstimateTraffic(seoScore, pageCount, internalLinks, externalLinks int, hasSchema bool, domainAgeYears int) string {
	score := 0
	score += seoScore / 10
	switch {
	case pageCount >= 20:
		score += 4
	case pageCount >= 10:
		score += 2
	case pageCount >= 5:
		score++
	}
	switch {
	case internalLinks >= 100:
		score += 3
	case internalLinks >= 30:
		score += 2
	case internalLinks >= 10:
		score++
	}
	if externalLinks >= 10 {
		score++
	}
	if hasSchema {
		score += 2
	}
	switch {
	case domainAgeYears >= 10:
		score += 3
	case domainAgeYears >= 5:
		score += 2
	case domainAgeYears >= 2:
		score++
	}

	switch {
	case score >= 16:
		return "high"
	case score >= 9:
		return "medium"
	default:
		return "low"
	}
}

// EstimateDomainAge infers the domain's age in years from the earliest
// founded/copyright year in the text. Returns 0 when no year is found.
func EstimateDomainAge(text string) int {
	earliest := 0
	for _, re := range []*regexp.Regexp{foundedYearRe, copyrightYearRe} {
		if year := earliestYear(text, re); year > 0 && (earliest == 0 || year < earliest) {
			earliest = year
		}
	}
	if earliest == 0 {
		return 0
	}
	age := time.Now().Year() - earliest
	if age < 0 {
		return 0
	}
	return age
}

func earliestYear(text string, re *regexp.Regexp) int {
	earliest := 0
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if year > time.Now().Year() {
			continue
		}
		if earliest == 0 || year < earliest {
			earliest = year
		}
	}
	return earliest
}

// ClassifyMarketScope buckets the addressable market by language cues and
// how many countries the geography detector saw.
func ClassifyMarketScope(text string, geo domain.Geography) string {
	countries := 0
	if geo.Primary != "" {
		countries = 1 + len(geo.Secondary)
	}

	globalScore := len(globalWords.FindAllStringIndex(text, -1))
	if countries >= 3 {
		globalScore += 2
	}
	nationalScore := len(nationalWords.FindAllStringIndex(text, -1))
	regionalScore := len(regionalWords.FindAllStringIndex(text, -1))
	nicheScore := len(nicheWords.FindAllStringIndex(text, -1))

	switch {
	case globalScore > 0 && globalScore >= nationalScore && globalScore >= regionalScore:
		return "global"
	case nationalScore > 0 && nationalScore >= regionalScore:
		return "national"
	case regionalScore > 0:
		return "regional"
	case nicheScore > 0:
		return "niche"
	case countries >= 2:
		return "global"
	case countries == 1:
		return "national"
	default:
		return "niche"
	}
}

// FairnessPolicy filters competitor candidates so small businesses are not
// matched against household-name giants. Matching is token-based, not raw
// substring, so "Applecart" survives an "apple" denylist entry.
type FairnessPolicy struct {
	Denylist []string
}

// DefaultFairnessPolicy returns the stock big-brand denylist.
func DefaultFairnessPolicy() FairnessPolicy {
	return FairnessPolicy{Denylist: []string{
		"google", "amazon", "apple", "microsoft", "meta", "facebook",
		"netflix", "walmart", "alibaba", "samsung", "oracle", "salesforce",
		"adobe", "ibm", "shopify", "ebay",
	}}
}

// Filter drops denylisted candidates when the subject company is a startup
// or SMB. Larger companies keep the full candidate list.
func (p FairnessPolicy) Filter(candidates []string, stage string) []string {
	if stage != StageStartup && stage != StageSMB {
		return candidates
	}
	filtered := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if !p.denied(candidate) {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

func (p FairnessPolicy) denied(candidate string) bool {
	tokens := strings.Fields(strings.ToLower(candidate))
	for _, entry := range p.Denylist {
		for _, token := range tokens {
			if strings.Trim(token, ".,!&()") == entry {
				return true
			}
		}
	}
	return false
}
