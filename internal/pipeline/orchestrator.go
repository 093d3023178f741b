// Package pipeline sequences the analysis stages for one job. Each stage
// is a descriptor with a progress weight and a run function; the driver
// marks pending/processing/completed/failed per stage, keeps the overall
// percentage monotonic, and continues past per-stage failures. Only a
// FatalError (or a panic) fails the whole job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georepute/domain-intelligence/internal/analyze"
	"github.com/georepute/domain-intelligence/internal/crawl"
	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/extract"
	"github.com/georepute/domain-intelligence/internal/fetch"
	"github.com/georepute/domain-intelligence/internal/monitoring"
	"github.com/georepute/domain-intelligence/internal/services"
	"github.com/georepute/domain-intelligence/internal/storage"
)

// FatalError aborts the whole job instead of degrading one stage.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps an error so the driver treats it as job-fatal.
func Fatal(stage string, err error) error {
	return &FatalError{Stage: stage, Err: err}
}

// Recent is the dedup guard consulted when a job finishes.
type Recent interface {
	MarkAnalyzed(ctx context.Context, domainURL string, ttl time.Duration) error
}

// Options tune one orchestrator instance.
type Options struct {
	Crawl     crawl.Options
	DedupTTL  time.Duration
	Platforms []string
}

// Orchestrator runs analysis jobs end to end.
type Orchestrator struct {
	store      storage.JobStore
	recent     Recent
	crawler    *crawl.Crawler
	fetcher    *fetch.Fetcher
	parser     *extract.Chain
	seo        *analyze.SEOAnalyzer
	keywords   *services.KeywordClient
	visibility *services.VisibilityClient
	fairness   analyze.FairnessPolicy
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	opts       Options
}

// NewOrchestrator wires the pipeline. recent may be nil to disable the
// dedup guard.
func NewOrchestrator(store storage.JobStore, recent Recent, crawler *crawl.Crawler, fetcher *fetch.Fetcher, parser *extract.Chain, seo *analyze.SEOAnalyzer, keywords *services.KeywordClient, visibility *services.VisibilityClient, m *monitoring.Metrics, l *zap.Logger, opts Options) *Orchestrator {
	if len(opts.Platforms) == 0 {
		opts.Platforms = services.DefaultPlatforms
	}
	return &Orchestrator{
		store:      store,
		recent:     recent,
		crawler:    crawler,
		fetcher:    fetcher,
		parser:     parser,
		seo:        seo,
		keywords:   keywords,
		visibility: visibility,
		fairness:   analyze.DefaultFairnessPolicy(),
		metrics:    m,
		logger:     l,
		opts:       opts,
	}
}

// jobState accumulates stage outputs as the pipeline advances.
type jobState struct {
	req      domain.AnalysisRequest
	outcome  *crawl.Outcome
	text     string // combined visible text across usable pages
	homeHTML string

	structure       domain.SiteStructure
	seoReport       domain.SEOReport
	geography       domain.Geography
	toxic           []string
	headings        domain.HeadingStats
	profile         domain.CompanyProfile
	insights        analyze.Insights
	keywords        domain.KeywordData
	competitors     []string
	visibility      domain.AIVisibility
	recommendations []string
}

// stage is one pipeline step descriptor.
type stage struct {
	name   string
	weight int
	run    func(ctx context.Context, st *jobState) error
}

const maxCombinedText = 200_000

// Run executes the full pipeline for one job and persists the terminal
// state. It never returns an error; failures are recorded on the job row.
func (o *Orchestrator) Run(ctx context.Context, req domain.AnalysisRequest) {
	logger := o.logger.With(
		zap.String("job_id", req.JobID),
		zap.String("domain", req.DomainURL),
		zap.String("run_id", uuid.NewString()),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked", zap.Any("panic", r))
			o.failJob(ctx, req.JobID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	st := &jobState{req: req}
	stages := o.stages(req)
	totalWeight := 0
	for _, s := range stages {
		totalWeight += s.weight
	}

	done := 0
	for _, s := range stages {
		overall := done * 100 / totalWeight
		o.updateProgress(ctx, req.JobID, s.name, "processing", 0, overall)

		err := s.run(ctx, st)
		done += s.weight
		overall = done * 100 / totalWeight

		if err != nil {
			var fatal *FatalError
			if errors.As(err, &fatal) {
				logger.Error("fatal stage error", zap.String("stage", s.name), zap.Error(err))
				o.updateProgress(ctx, req.JobID, s.name, "failed", 100, overall)
				o.failJob(ctx, req.JobID, err.Error())
				return
			}
			logger.Warn("stage degraded", zap.String("stage", s.name), zap.Error(err))
			o.metrics.IncStageFailure(s.name)
			o.updateProgress(ctx, req.JobID, s.name, "failed", 100, overall)
			continue
		}
		o.updateProgress(ctx, req.JobID, s.name, "completed", 100, overall)
	}

	result := o.assemble(st)
	if err := o.store.CompleteJob(ctx, req.JobID, result); err != nil {
		logger.Error("failed to persist result", zap.Error(err))
		o.failJob(ctx, req.JobID, "failed to persist analysis result")
		return
	}

	if o.recent != nil && o.opts.DedupTTL > 0 {
		if err := o.recent.MarkAnalyzed(ctx, req.DomainURL, o.opts.DedupTTL); err != nil {
			logger.Warn("failed to mark domain as analyzed", zap.Error(err))
		}
	}

	o.metrics.IncJob("completed")
	logger.Info("analysis completed",
		zap.Int("pages", len(st.outcome.Pages)),
		zap.Int("seo_score", st.seoReport.Score),
		zap.Duration("took", time.Since(start)))
}

func (o *Orchestrator) stages(req domain.AnalysisRequest) []stage {
	stages := []stage{
		{name: "crawl", weight: 30, run: o.runCrawl},
		{name: "siteStructure", weight: 8, run: o.runStructure},
		{name: "seo", weight: 14, run: o.runSEO},
		{name: "geography", weight: 8, run: o.runGeography},
		{name: "toxicPatterns", weight: 6, run: o.runToxic},
		{name: "analysis", weight: 6, run: o.runAnalysis},
		{name: "keywords", weight: 8, run: o.runKeywords},
		{name: "competitors", weight: 4, run: o.runCompetitors},
	}
	if req.Integrations.GSC {
		stages = append(stages, stage{name: "gscData", weight: 2, run: o.runGSC})
	}
	stages = append(stages,
		stage{name: "aiVisibility", weight: 10, run: o.runVisibility},
		stage{name: "recommendations", weight: 4, run: o.runRecommendations},
	)
	return stages
}

// runCrawl is the only stage whose failure is fatal: without a seed URL
// that parses there is nothing to analyze.
func (o *Orchestrator) runCrawl(ctx context.Context, st *jobState) error {
	outcome, err := o.crawler.Crawl(ctx, st.req.DomainURL, o.opts.Crawl)
	if err != nil {
		return Fatal("crawl", err)
	}
	st.outcome = outcome

	var combined strings.Builder
	for _, page := range outcome.Pages {
		if !page.Usable() {
			continue
		}
		if st.homeHTML == "" {
			st.homeHTML = page.HTML
		}
		if combined.Len() < maxCombinedText {
			combined.WriteString(o.parser.Parse(page.HTML).Text())
			combined.WriteString(" ")
		}
	}
	st.text = combined.String()
	return nil
}

func (o *Orchestrator) runStructure(ctx context.Context, st *jobState) error {
	st.structure = analyze.AnalyzeStructure(ctx, st.outcome, o.fetcher, st.req.DomainURL)
	return nil
}

func (o *Orchestrator) runSEO(_ context.Context, st *jobState) error {
	var reports []domain.SEOPageReport
	for _, page := range st.outcome.Pages {
		if !page.Usable() {
			continue
		}
		reports = append(reports, o.seo.AnalyzePage(page.URL, page.HTML, st.outcome.BaseHost))
	}
	st.seoReport = o.seo.Aggregate(reports)
	return nil
}

func (o *Orchestrator) runGeography(_ context.Context, st *jobState) error {
	st.geography = analyze.DetectGeography(st.text, st.homeHTML, st.outcome.BaseHost)
	return nil
}

func (o *Orchestrator) runToxic(_ context.Context, st *jobState) error {
	st.toxic = analyze.DetectToxicPatterns(st.outcome.Pages, o.parser)
	return nil
}

// runAnalysis derives headings stats, the company profile, and the
// strengths/weaknesses narrative from the stages before it.
func (o *Orchestrator) runAnalysis(_ context.Context, st *jobState) error {
	var headings []domain.Heading
	for _, page := range st.outcome.Pages {
		if !page.Usable() {
			continue
		}
		headings = append(headings, o.parser.Parse(page.HTML).Headings(page.URL)...)
	}
	st.headings = analyze.AggregateHeadings(headings)

	internal, external := 0, 0
	for _, page := range st.seoReport.Pages {
		internal += page.Links.Internal
		external += page.Links.External
	}
	hasSchema := false
	for _, page := range st.seoReport.Pages {
		if len(page.Meta.SchemaTypes) > 0 {
			hasSchema = true
			break
		}
	}

	st.profile = domain.CompanyProfile{
		Stage: analyze.ClassifyStage(st.text, st.structure.TotalPages),
		Traffic: analyze.EstimateTraffic(
			st.seoReport.Score, st.structure.TotalPages,
			internal, external, hasSchema,
			analyze.EstimateDomainAge(st.text)),
		MarketScope: analyze.ClassifyMarketScope(st.text, st.geography),
	}
	st.insights = analyze.BuildInsights(st.seoReport, st.structure, st.toxic)
	return nil
}

// runKeywords delegates to the external extraction service. A non-OK
// response degrades to empty lists without failing the stage.
func (o *Orchestrator) runKeywords(ctx context.Context, st *jobState) error {
	data, err := o.keywords.Extract(ctx, services.KeywordRequest{
		BrandName:      st.req.DomainName,
		WebsiteURL:     st.req.DomainURL,
		Industry:       industryHint(st.seoReport.Pages),
		Language:       st.req.Language,
		CompanyContext: fmt.Sprintf("stage=%s scope=%s market=%s", st.profile.Stage, st.profile.MarketScope, st.geography.Primary),
	})
	if err != nil {
		o.logger.Warn("keyword extraction degraded to empty output",
			zap.String("job_id", st.req.JobID), zap.Error(err))
		o.metrics.IncStageFailure("keywords")
		st.keywords = domain.KeywordData{}
		return nil
	}
	st.keywords = data
	return nil
}

// Schema.org types too generic to describe a line of business.
var genericSchemaTypes = map[string]bool{
	"Organization": true, "WebSite": true, "WebPage": true,
	"BreadcrumbList": true, "SearchAction": true, "ImageObject": true,
}

// industryHint picks the most specific schema.org type found on the site as
// a coarse industry label for the keyword service. Empty when the site
// carries no structured data beyond the generic types.
func industryHint(pages []domain.SEOPageReport) string {
	for _, page := range pages {
		for _, schemaType := range page.Meta.SchemaTypes {
			if !genericSchemaTypes[schemaType] {
				return schemaType
			}
		}
	}
	return ""
}

// runCompetitors applies the fairness policy to the candidate list.
func (o *Orchestrator) runCompetitors(_ context.Context, st *jobState) error {
	st.competitors = o.fairness.Filter(st.keywords.Competitors, st.profile.Stage)
	return nil
}

// runGSC is a placeholder for the Search Console integration, which is
// fetched by a separate service once the job completes. The stage exists
// so the dashboard's progress bar accounts for it.
func (o *Orchestrator) runGSC(_ context.Context, _ *jobState) error {
	return nil
}

func (o *Orchestrator) runVisibility(ctx context.Context, st *jobState) error {
	result, err := o.visibility.Scan(ctx, services.VisibilityRequest{
		DomainURL: st.req.DomainURL,
		Platforms: o.opts.Platforms,
		Language:  st.req.Language,
		UserID:    st.req.UserID,
	})
	if err != nil {
		o.logger.Warn("ai visibility scan degraded to empty output",
			zap.String("job_id", st.req.JobID), zap.Error(err))
		o.metrics.IncStageFailure("aiVisibility")
		st.visibility = domain.AIVisibility{}
		return nil
	}
	st.visibility = result
	return nil
}

func (o *Orchestrator) runRecommendations(_ context.Context, st *jobState) error {
	st.recommendations = analyze.PrioritizeRecommendations(st.seoReport, st.structure, st.toxic, st.geography)
	return nil
}

// assemble builds the immutable terminal document.
func (o *Orchestrator) assemble(st *jobState) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		JobID:           st.req.JobID,
		DomainURL:       st.req.DomainURL,
		DomainName:      st.req.DomainName,
		SEO:             st.seoReport,
		Structure:       st.structure,
		Geography:       st.geography,
		Headings:        st.headings,
		Profile:         st.profile,
		Keywords:        st.keywords.Keywords,
		Competitors:     st.competitors,
		Strengths:       st.insights.Strengths,
		Weaknesses:      st.insights.Weaknesses,
		ToxicPatterns:   st.toxic,
		AIVisibility:    st.visibility,
		Recommendations: st.recommendations,
		CompletedAt:     time.Now().UTC(),
	}
}

func (o *Orchestrator) updateProgress(ctx context.Context, jobID, step, status string, stepPct, overallPct int) {
	if err := o.store.UpdateProgress(ctx, jobID, step, status, stepPct, overallPct); err != nil {
		o.logger.Warn("failed to update job progress",
			zap.String("job_id", jobID), zap.String("step", step), zap.Error(err))
	}
}

func (o *Orchestrator) failJob(ctx context.Context, jobID, message string) {
	if err := o.store.FailJob(ctx, jobID, message); err != nil {
		o.logger.Error("failed to mark job as failed",
			zap.String("job_id", jobID), zap.Error(err))
	}
	o.metrics.IncJob("failed")
}
