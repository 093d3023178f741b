package domain

import "time"

// AnalysisRequest is the payload for the API.
type AnalysisRequest struct {
	JobID        string       `json:"jobId"`
	DomainURL    string       `json:"domainUrl"`
	DomainName   string       `json:"domainName"`
	UserID       string       `json:"userId"`
	Language     string       `json:"language"`
	Force        bool         `json:"force"` // Bypass the recently-analyzed guard
	Integrations Integrations `json:"integrations"`
}

// Integrations flags which external data sources the caller has connected.
type Integrations struct {
	GSC bool `json:"gsc"`
	GA4 bool `json:"ga4"`
	GBP bool `json:"gbp"`
}

// CrawlTarget is a normalized URL queued for fetching, with its hop
// distance from the seed.
type CrawlTarget struct {
	URL   string
	Depth int
}

// CrawledPage is an immutable fetch outcome. Only pages with StatusCode 200
// and non-empty HTML are usable as analysis input.
type CrawledPage struct {
	URL        string
	HTML       string
	StatusCode int
	Depth      int
}

// Usable reports whether the page can feed the analysis stages.
func (p CrawledPage) Usable() bool {
	return p.StatusCode == 200 && p.HTML != ""
}

// LinkGraph maps a page URL to the same-domain URLs it links to.
type LinkGraph map[string][]string

// Heading is one H1/H2/H3 captured in document order, tagged with its
// source page for cross-page aggregation.
type Heading struct {
	PageURL  string `json:"pageUrl"`
	Level    int    `json:"level"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// MetaSignals holds the head/meta signals extracted from one document.
type MetaSignals struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	HasKeywords    bool     `json:"hasKeywords"`
	HasOpenGraph   bool     `json:"hasOpenGraph"`
	HasTwitterCard bool     `json:"hasTwitterCard"`
	Canonical      string   `json:"canonical"`
	SchemaTypes    []string `json:"schemaTypes"`
	HasViewport    bool     `json:"hasViewport"`
	ResponsiveHint bool     `json:"responsiveHint"`
}

// ImageAudit counts alt-text coverage over the page's <img> tags.
type ImageAudit struct {
	Total      int `json:"total"`
	WithAlt    int `json:"withAlt"`
	MissingAlt int `json:"missingAlt"`
}

// LinkCounts breaks down the anchors found on a page.
type LinkCounts struct {
	Internal int `json:"internal"`
	External int `json:"external"`
	Nofollow int `json:"nofollow"`
}

// SEOPageReport is the rule-based report for a single page.
type SEOPageReport struct {
	URL               string      `json:"url"`
	Meta              MetaSignals `json:"meta"`
	TitleLength       int         `json:"titleLength"`
	DescriptionLength int         `json:"descriptionLength"`
	H1Count           int         `json:"h1Count"`
	H2Count           int         `json:"h2Count"`
	H3Count           int         `json:"h3Count"`
	Links             LinkCounts  `json:"links"`
	Images            ImageAudit  `json:"images"`
	HTTPS             bool        `json:"https"`
	Score             int         `json:"score"`
	Recommendations   []string    `json:"recommendations"`
}

// SEOReport aggregates per-page reports into the domain-level view.
type SEOReport struct {
	Score           int             `json:"score"`
	Pages           []SEOPageReport `json:"pages"`
	Recommendations []string        `json:"recommendations"`
}

// Geography is the detected primary market plus up to two secondary ones.
type Geography struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary"`
}

// SiteStructure summarizes the crawled link topology.
type SiteStructure struct {
	TotalPages       int         `json:"totalPages"`
	FailedFetches    int         `json:"failedFetches"`
	MaxDepth         int         `json:"maxDepth"`
	PagesPerDepth    map[int]int `json:"pagesPerDepth"`
	HasSitemap       bool        `json:"hasSitemap"`
	InternalLinks    int         `json:"internalLinks"`
	AvgInternalLinks float64     `json:"avgInternalLinks"`
	CleanURLs        bool        `json:"cleanUrls"`
}

// CompanyProfile buckets the business for competitor fairness filtering.
type CompanyProfile struct {
	Stage       string `json:"stage"`       // startup, smb, mid-market, enterprise
	Traffic     string `json:"traffic"`     // low, medium, high
	MarketScope string `json:"marketScope"` // niche, regional, national, global
}

// KeywordData is the downstream keyword/competitor service payload.
type KeywordData struct {
	Keywords    []string `json:"keywords"`
	Competitors []string `json:"competitors"`
}

// PlatformVisibility is one LLM platform's brand-mention summary.
type PlatformVisibility struct {
	Mentions        int      `json:"mentions"`
	TotalQueries    int      `json:"totalQueries"`
	VisibilityScore float64  `json:"visibilityScore"`
	Queries         []string `json:"queries"`
}

// AIVisibility is the aggregate across scanned platforms.
type AIVisibility struct {
	Platforms    map[string]PlatformVisibility `json:"platforms"`
	OverallScore float64                       `json:"overallScore"`
}

// StepState is one stage's entry in the job progress record.
type StepState struct {
	Status     string    `json:"status"` // pending, processing, completed, failed, skipped
	Percentage int       `json:"percentage"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// JobProgress is the polling-friendly live status record. Percentage is
// monotonically non-decreasing within a run.
type JobProgress struct {
	CurrentStep string               `json:"currentStep"`
	Percentage  int                  `json:"percentage"`
	Steps       map[string]StepState `json:"steps"`
}

// AnalysisResult is the terminal aggregate document, written once at job
// completion.
type AnalysisResult struct {
	JobID           string         `json:"jobId"`
	DomainURL       string         `json:"domainUrl"`
	DomainName      string         `json:"domainName"`
	SEO             SEOReport      `json:"seo"`
	Structure       SiteStructure  `json:"structure"`
	Geography       Geography      `json:"geography"`
	Headings        HeadingStats   `json:"headings"`
	Profile         CompanyProfile `json:"profile"`
	Keywords        []string       `json:"keywords"`
	Competitors     []string       `json:"competitors"`
	Strengths       []string       `json:"strengths"`
	Weaknesses      []string       `json:"weaknesses"`
	ToxicPatterns   []string       `json:"toxicPatterns"`
	AIVisibility    AIVisibility   `json:"aiVisibility"`
	Recommendations []string       `json:"recommendations"`
	CompletedAt     time.Time      `json:"completedAt"`
}

// HeadingStats summarizes headings across every crawled page.
type HeadingStats struct {
	H1Count      int      `json:"h1Count"`
	H2Count      int      `json:"h2Count"`
	H3Count      int      `json:"h3Count"`
	DuplicateH1s []string `json:"duplicateH1s"`
}

// JobStatusResponse is the API response for a job status query.
type JobStatusResponse struct {
	JobID        string          `json:"jobId"`
	Status       string          `json:"status"`
	Progress     JobProgress     `json:"progress"`
	Result       *AnalysisResult `json:"result,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
