// Package crawl implements a polite, bounded, breadth-first site crawler.
//
// A single coordinator goroutine owns the frontier, the visited set, and
// the link graph; worker goroutines only fetch pages and report outcomes
// over channels. That keeps every piece of crawl state single-writer even
// though fetches run in parallel.
package crawl

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/georepute/domain-intelligence/internal/domain"
	"github.com/georepute/domain-intelligence/internal/extract"
	"github.com/georepute/domain-intelligence/internal/fetch"
	"github.com/georepute/domain-intelligence/internal/monitoring"
	"github.com/georepute/domain-intelligence/internal/robots"
	"github.com/georepute/domain-intelligence/internal/urlutil"
)

// Options bound one crawl run.
type Options struct {
	MaxPages    int
	MaxDepth    int
	Parallelism int
	RateLimit   int // outbound requests per second against the target
}

func (o Options) withDefaults() Options {
	if o.MaxPages <= 0 {
		o.MaxPages = 25
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.Parallelism <= 0 {
		o.Parallelism = 5
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 4
	}
	return o
}

// Outcome is everything one crawl run produced. Pages holds only
// successful fetches; FailedFetches counts the rest for page statistics.
type Outcome struct {
	Pages         []domain.CrawledPage
	Graph         domain.LinkGraph
	FailedFetches int
	MaxDepthSeen  int
	RobotsFound   bool
	Sitemaps      []string
	BaseHost      string
}

// Crawler walks a site breadth-first under page, depth, and concurrency
// caps, consulting robots.txt before every fetch.
type Crawler struct {
	fetcher   *fetch.Fetcher
	parser    *extract.Chain
	userAgent string
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewCrawler wires a Crawler from its collaborators.
func NewCrawler(fetcher *fetch.Fetcher, parser *extract.Chain, userAgent string, m *monitoring.Metrics, l *zap.Logger) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		parser:    parser,
		userAgent: userAgent,
		metrics:   m,
		logger:    l,
	}
}

// fetchOutcome is what a worker reports back to the coordinator.
type fetchOutcome struct {
	target domain.CrawlTarget
	result fetch.Result
	links  []string
}

// Crawl runs a bounded breadth-first crawl from the seed URL. It terminates
// when the frontier drains, the page cap is hit, or the context is
// cancelled; it never fails because individual pages failed.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, opts Options) (*Outcome, error) {
	opts = opts.withDefaults()
	start := time.Now()

	seed, err := urlutil.Normalize(urlutil.EnsureScheme(seedURL))
	if err != nil {
		return nil, err
	}
	baseHost := urlutil.Hostname(seed)

	// robots.txt is fetched once per run; everything after answers from
	// memory. Load failures leave the gate open.
	gate := robots.NewGate(c.userAgent)
	if loadErr := gate.Load(ctx, seed); loadErr != nil {
		c.logger.Debug("robots.txt unavailable, failing open",
			zap.String("host", baseHost), zap.Error(loadErr))
	}

	outcome := &Outcome{
		Graph:       domain.LinkGraph{},
		RobotsFound: gate.Found(),
		Sitemaps:    gate.Sitemaps(),
		BaseHost:    baseHost,
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan domain.CrawlTarget)
	results := make(chan fetchOutcome)

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < opts.Parallelism; i++ {
		group.Go(func() error {
			for target := range jobs {
				if waitErr := limiter.Wait(groupCtx); waitErr != nil {
					return nil
				}
				fetchStart := time.Now()
				res := c.fetcher.Fetch(groupCtx, target.URL)
				c.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())

				var links []string
				if res.StatusCode == 200 && res.HTML != "" {
					links = c.parser.Parse(res.HTML).Links(target.URL, baseHost)
				}
				select {
				case results <- fetchOutcome{target: target, result: res, links: links}:
				case <-groupCtx.Done():
					return nil
				}
			}
			return nil
		})
	}

	visited := map[string]bool{seed: true}
	var frontier []domain.CrawlTarget
	if gate.Allowed(requestPath(seed)) {
		frontier = append(frontier, domain.CrawlTarget{URL: seed, Depth: 0})
	}

	inflight := 0
	capped := false

coordinate:
	for len(frontier) > 0 || inflight > 0 {
		var dispatch chan domain.CrawlTarget
		var next domain.CrawlTarget
		if len(frontier) > 0 {
			dispatch = jobs
			next = frontier[0]
		}

		select {
		case dispatch <- next:
			frontier = frontier[1:]
			inflight++

		case out := <-results:
			inflight--
			c.collect(out, opts, gate, visited, &frontier, &capped, outcome)
			if capped {
				frontier = frontier[:0]
			}

		case <-ctx.Done():
			break coordinate
		}
	}

	close(jobs)

	// Workers may still be mid-fetch; drain their results so they can exit.
	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()
	for {
		select {
		case out := <-results:
			c.collect(out, opts, gate, visited, &frontier, &capped, outcome)
		case <-done:
			c.metrics.CrawlDuration.Observe(time.Since(start).Seconds())
			c.logger.Info("crawl finished",
				zap.String("host", baseHost),
				zap.Int("pages", len(outcome.Pages)),
				zap.Int("failed", outcome.FailedFetches),
				zap.Int("max_depth", outcome.MaxDepthSeen),
				zap.Duration("took", time.Since(start)))
			return outcome, nil
		}
	}
}

// collect folds one worker outcome into crawl state. Only the coordinator
// calls it.
func (c *Crawler) collect(out fetchOutcome, opts Options, gate *robots.Gate, visited map[string]bool, frontier *[]domain.CrawlTarget, capped *bool, outcome *Outcome) {
	if out.result.StatusCode != 200 || out.result.HTML == "" {
		outcome.FailedFetches++
		c.metrics.IncPage("failed")
		c.logger.Debug("page fetch failed",
			zap.String("url", out.target.URL),
			zap.Int("status", out.result.StatusCode))
		return
	}

	if len(outcome.Pages) >= opts.MaxPages {
		// Late completion after the cap was reached mid-flight.
		return
	}

	outcome.Pages = append(outcome.Pages, domain.CrawledPage{
		URL:        out.target.URL,
		HTML:       out.result.HTML,
		StatusCode: out.result.StatusCode,
		Depth:      out.target.Depth,
	})
	outcome.Graph[out.target.URL] = out.links
	if out.target.Depth > outcome.MaxDepthSeen {
		outcome.MaxDepthSeen = out.target.Depth
	}
	c.metrics.IncPage("ok")

	if len(outcome.Pages) >= opts.MaxPages {
		*capped = true
		return
	}

	if out.target.Depth >= opts.MaxDepth {
		return
	}
	for _, link := range out.links {
		if visited[link] {
			continue
		}
		visited[link] = true
		if !gate.Allowed(requestPath(link)) {
			// Disallowed URLs are dropped silently and never count
			// against the page budget.
			continue
		}
		*frontier = append(*frontier, domain.CrawlTarget{URL: link, Depth: out.target.Depth + 1})
	}
}

// requestPath extracts the path (plus query) robots rules match against.
func requestPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	path := parsed.Path
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return path
}
