package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/georepute/domain-intelligence/internal/analyze"
	"github.com/georepute/domain-intelligence/internal/api"
	"github.com/georepute/domain-intelligence/internal/config"
	"github.com/georepute/domain-intelligence/internal/crawl"
	"github.com/georepute/domain-intelligence/internal/extract"
	"github.com/georepute/domain-intelligence/internal/fetch"
	"github.com/georepute/domain-intelligence/internal/monitoring"
	"github.com/georepute/domain-intelligence/internal/pipeline"
	"github.com/georepute/domain-intelligence/internal/services"
	"github.com/georepute/domain-intelligence/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	jobStore, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	recentStore := storage.NewRecentStore(cfg.RedisAddr)

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	var renderer *fetch.Renderer
	if cfg.RenderFallback {
		renderer = fetch.NewRenderer(fetchTimeout * 3)
	}
	fetcher := fetch.NewFetcher(cfg.UserAgent, fetchTimeout, renderer, logger)
	parser := extract.NewChain()

	crawler := crawl.NewCrawler(fetcher, parser, cfg.UserAgent, metrics, logger)
	seoAnalyzer := analyze.NewSEOAnalyzer(parser)

	orchestrator := pipeline.NewOrchestrator(
		jobStore, recentStore, crawler, fetcher, parser, seoAnalyzer,
		services.NewKeywordClient(cfg.KeywordServiceURL),
		services.NewVisibilityClient(cfg.AIVisibilityServiceURL),
		metrics, logger,
		pipeline.Options{
			Crawl: crawl.Options{
				MaxPages:    cfg.MaxPages,
				MaxDepth:    cfg.MaxDepth,
				Parallelism: cfg.CrawlParallelism,
				RateLimit:   cfg.CrawlRateLimit,
			},
			DedupTTL: time.Duration(cfg.DeduplicationHours) * time.Hour,
		},
	)

	server := api.NewServer(cfg, orchestrator, jobStore, recentStore, metrics, logger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
