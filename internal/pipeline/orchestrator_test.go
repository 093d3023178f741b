package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

type progressCall struct {
	step       string
	status     string
	overallPct int
}

// fakeJobStore records every persistence call so tests can assert on the
// exact sequence the driver produced.
type fakeJobStore struct {
	calls     []progressCall
	completed *domain.AnalysisResult
	failedMsg string
}

func (f *fakeJobStore) CreateJob(ctx context.Context, req domain.AnalysisRequest) error {
	return nil
}

func (f *fakeJobStore) UpdateProgress(ctx context.Context, jobID, step, status string, stepPercentage, overallPercentage int) error {
	f.calls = append(f.calls, progressCall{step: step, status: status, overallPct: overallPercentage})
	return nil
}

func (f *fakeJobStore) CompleteJob(ctx context.Context, jobID string, result *domain.AnalysisResult) error {
	f.completed = result
	return nil
}

func (f *fakeJobStore) FailJob(ctx context.Context, jobID, message string) error {
	f.failedMsg = message
	return nil
}

func (f *fakeJobStore) GetJob(ctx context.Context, jobID string) (*domain.JobStatusResponse, error) {
	return nil, storage.ErrJobNotFound
}

// lastStatus returns the final recorded status for a step, or "".
func (f *fakeJobStore) lastStatus(step string) string {
	status := ""
	for _, call := range f.calls {
		if call.step == step {
			status = call.status
		}
	}
	return status
}

const testSiteHome = `<html><head><title>Acme Widgets, handmade in small batches</title>
<meta name="description" content="Acme is a family owned workshop selling handmade widgets, tools, and repair kits with nationwide shipping across the country since 2015.">
<script type="application/ld+json">{"@type":"HardwareStore","name":"Acme Widgets"}</script></head>
<body><h1>Acme Widgets</h1>
<p>We are a family owned small business making widgets since 2015. Nationwide shipping.</p>
<p>More words here so the landing page reads as real content rather than a thin placeholder.
Our catalog covers dozens of widget models, spare parts, repair guides, and tutorials written
by the people who actually build each unit in the workshop every single week of the year.</p>
<a href="/about">About</a></body></html>`

const testSiteAbout = `<html><head><title>About Acme Widgets and our workshop story</title></head>
<body><h1>About us</h1>
<p>Acme was founded in 2015 by two siblings who wanted sturdier widgets than the big brands sold.
The workshop still sits on the same street, and every order ships from the bench where it was built.
That has not changed in a decade and it is not going to change now, whatever the market does.</p></body></html>`

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testSiteHome))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testSiteAbout))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestOrchestrator(store *fakeJobStore, keywordURL string) *Orchestrator {
	logger := zap.NewNop()
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	fetcher := fetch.NewFetcher("TestBot/1.0", 5*time.Second, nil, logger)
	parser := extract.NewChain()
	crawler := crawl.NewCrawler(fetcher, parser, "TestBot/1.0", metrics, logger)

	return NewOrchestrator(
		store, nil, crawler, fetcher, parser,
		analyze.NewSEOAnalyzer(parser),
		services.NewKeywordClient(keywordURL),
		services.NewVisibilityClient(""),
		metrics, logger,
		Options{Crawl: crawl.Options{MaxPages: 5, MaxDepth: 1, Parallelism: 2, RateLimit: 100}},
	)
}

func TestRunCompletesWhenKeywordServiceFails(t *testing.T) {
	site := newTestSite(t)
	keywordSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer keywordSrv.Close()

	store := &fakeJobStore{}
	o := newTestOrchestrator(store, keywordSrv.URL)

	o.Run(context.Background(), domain.AnalysisRequest{
		JobID: "job-1", DomainURL: site.URL, DomainName: "Acme",
	})

	require.NotNil(t, store.completed, "job should complete despite the keyword service failing")
	assert.Empty(t, store.failedMsg)
	assert.Equal(t, "completed", store.lastStatus("keywords"))
	assert.Empty(t, store.completed.Keywords)
	assert.Empty(t, store.completed.Competitors)
}

func TestRunProgressIsMonotonic(t *testing.T) {
	site := newTestSite(t)
	store := &fakeJobStore{}
	o := newTestOrchestrator(store, "")

	o.Run(context.Background(), domain.AnalysisRequest{
		JobID: "job-2", DomainURL: site.URL, DomainName: "Acme",
	})

	require.NotNil(t, store.completed)
	require.NotEmpty(t, store.calls)

	prev := 0
	for _, call := range store.calls {
		assert.GreaterOrEqual(t, call.overallPct, prev, "overall percentage regressed at step %s", call.step)
		prev = call.overallPct
	}
	assert.Equal(t, 100, store.calls[len(store.calls)-1].overallPct)

	for _, step := range []string{
		"crawl", "siteStructure", "seo", "geography", "toxicPatterns",
		"analysis", "keywords", "competitors", "aiVisibility", "recommendations",
	} {
		assert.Equal(t, "completed", store.lastStatus(step), "step %s", step)
	}
}

func TestRunIncludesGSCStageWhenRequested(t *testing.T) {
	site := newTestSite(t)
	store := &fakeJobStore{}
	o := newTestOrchestrator(store, "")

	o.Run(context.Background(), domain.AnalysisRequest{
		JobID: "job-3", DomainURL: site.URL, DomainName: "Acme",
		Integrations: domain.Integrations{GSC: true},
	})

	require.NotNil(t, store.completed)
	assert.Equal(t, "completed", store.lastStatus("gscData"))
}

func TestRunFailsJobOnUnparseableSeed(t *testing.T) {
	store := &fakeJobStore{}
	o := newTestOrchestrator(store, "")

	o.Run(context.Background(), domain.AnalysisRequest{
		JobID: "job-4", DomainURL: "https://bad host/", DomainName: "Bad",
	})

	assert.Nil(t, store.completed)
	assert.NotEmpty(t, store.failedMsg)
	assert.Equal(t, "failed", store.lastStatus("crawl"))
}

func TestRunFiltersCompetitorsForSmallCompanies(t *testing.T) {
	site := newTestSite(t)
	var captured services.KeywordRequest
	keywordSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"keywords":["handmade widgets"],"competitors":["Google","Corner Hardware"]}}`))
	}))
	defer keywordSrv.Close()

	store := &fakeJobStore{}
	o := newTestOrchestrator(store, keywordSrv.URL)

	o.Run(context.Background(), domain.AnalysisRequest{
		JobID: "job-5", DomainURL: site.URL, DomainName: "Acme",
	})

	require.NotNil(t, store.completed)
	assert.Equal(t, []string{"handmade widgets"}, store.completed.Keywords)
	assert.Equal(t, []string{"Corner Hardware"}, store.completed.Competitors)
	assert.Equal(t, "Acme", captured.BrandName)
	assert.Equal(t, "HardwareStore", captured.Industry)
}
