package analyze

import (
	"regexp"
	"sort"
	"strings"

	"github.com/georepute/domain-intelligence/internal/domain"
)

// countryPattern is one row of the fixed geography scoring table. Ties
// between equal scores resolve by table order, so the table doubles as the
// priority list.
type countryPattern struct {
	name     string
	tlds     []string
	patterns []*regexp.Regexp
}

const tldBonus = 5

func geoRe(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

var countryTable = []countryPattern{
	{
		name: "United States",
		tlds: []string{".us"},
		patterns: []*regexp.Regexp{
			geoRe("united states", "usa", "u\\.s\\.", "american"),
			geoRe("new york", "los angeles", "chicago", "houston", "san francisco", "seattle", "boston", "austin", "miami"),
			geoRe("nationwide shipping", "all 50 states"),
		},
	},
	{
		name: "United Kingdom",
		tlds: []string{".uk", ".co.uk", ".org.uk"},
		patterns: []*regexp.Regexp{
			geoRe("united kingdom", "great britain", "england", "scotland", "wales", "british"),
			geoRe("london", "manchester", "birmingham", "leeds", "glasgow", "edinburgh", "liverpool", "bristol"),
			geoRe("vat registered", "companies house"),
		},
	},
	{
		name: "Germany",
		tlds: []string{".de"},
		patterns: []*regexp.Regexp{
			geoRe("germany", "deutschland", "german"),
			geoRe("berlin", "munich", "münchen", "hamburg", "frankfurt", "cologne", "köln", "stuttgart"),
			geoRe("impressum", "gmbh"),
		},
	},
	{
		name: "France",
		tlds: []string{".fr"},
		patterns: []*regexp.Regexp{
			geoRe("france", "french", "français"),
			geoRe("paris", "lyon", "marseille", "toulouse", "bordeaux", "lille"),
			geoRe("sarl", "siret"),
		},
	},
	{
		name: "Spain",
		tlds: []string{".es"},
		patterns: []*regexp.Regexp{
			geoRe("spain", "españa", "spanish", "español"),
			geoRe("madrid", "barcelona", "valencia", "sevilla", "bilbao"),
		},
	},
	{
		name: "Italy",
		tlds: []string{".it"},
		patterns: []*regexp.Regexp{
			geoRe("italy", "italia", "italian", "italiano"),
			geoRe("rome", "roma", "milan", "milano", "naples", "napoli", "turin", "torino"),
		},
	},
	{
		name: "Netherlands",
		tlds: []string{".nl"},
		patterns: []*regexp.Regexp{
			geoRe("netherlands", "holland", "dutch", "nederland"),
			geoRe("amsterdam", "rotterdam", "utrecht", "eindhoven", "the hague"),
		},
	},
	{
		name: "Canada",
		tlds: []string{".ca"},
		patterns: []*regexp.Regexp{
			geoRe("canada", "canadian"),
			geoRe("toronto", "vancouver", "montreal", "montréal", "calgary", "ottawa"),
		},
	},
	{
		name: "Australia",
		tlds: []string{".au", ".com.au"},
		patterns: []*regexp.Regexp{
			geoRe("australia", "australian"),
			geoRe("sydney", "melbourne", "brisbane", "perth", "adelaide"),
		},
	},
	{
		name: "India",
		tlds: []string{".in"},
		patterns: []*regexp.Regexp{
			geoRe("india", "indian", "bharat"),
			geoRe("mumbai", "delhi", "bangalore", "bengaluru", "hyderabad", "chennai", "pune"),
		},
	},
	{
		name: "Brazil",
		tlds: []string{".br", ".com.br"},
		patterns: []*regexp.Regexp{
			geoRe("brazil", "brasil", "brazilian", "português"),
			geoRe("são paulo", "sao paulo", "rio de janeiro", "brasília", "salvador"),
		},
	},
	{
		name: "Japan",
		tlds: []string{".jp", ".co.jp"},
		patterns: []*regexp.Regexp{
			geoRe("japan", "japanese", "nippon"),
			geoRe("tokyo", "osaka", "kyoto", "yokohama", "nagoya"),
		},
	},
}

// DetectGeography scores each country in the fixed table by pattern hits
// over the combined text and markup plus a TLD bonus. Zero matches yields
// an empty result; no country is forced as a default.
func DetectGeography(text, rawHTML, host string) domain.Geography {
	combined := text + " " + rawHTML
	host = strings.ToLower(host)

	type scored struct {
		name  string
		score int
		index int
	}
	var hits []scored
	for i, country := range countryTable {
		score := 0
		for _, pattern := range country.patterns {
			score += len(pattern.FindAllStringIndex(combined, -1))
		}
		for _, tld := range country.tlds {
			if strings.HasSuffix(host, tld) {
				score += tldBonus
				break
			}
		}
		if score > 0 {
			hits = append(hits, scored{name: country.name, score: score, index: i})
		}
	}
	if len(hits) == 0 {
		return domain.Geography{}
	}

	// Equal scores keep table order.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].index < hits[j].index
	})

	geo := domain.Geography{Primary: hits[0].name}
	for _, h := range hits[1:] {
		if len(geo.Secondary) == 2 {
			break
		}
		geo.Secondary = append(geo.Secondary, h.name)
	}
	return geo
}
