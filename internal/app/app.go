// Package app wires configuration, storage, retrieval services, and the
// orchestrator into a runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilium/internal/common"
	"github.com/ternarybob/consilium/internal/handlers"
	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/services/analysis"
	"github.com/ternarybob/consilium/internal/services/decompose"
	"github.com/ternarybob/consilium/internal/services/embeddings"
	"github.com/ternarybob/consilium/internal/services/faqcache"
	"github.com/ternarybob/consilium/internal/services/llm"
	"github.com/ternarybob/consilium/internal/services/metrics"
	"github.com/ternarybob/consilium/internal/services/orchestrator"
	"github.com/ternarybob/consilium/internal/services/retrieval"
	"github.com/ternarybob/consilium/internal/services/rewrite"
	"github.com/ternarybob/consilium/internal/services/strategy"
	"github.com/ternarybob/consilium/internal/services/synthesis"
	"github.com/ternarybob/consilium/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	LLMService     interfaces.LLMService
	Embedder       interfaces.EmbeddingService
	FAQCache       *faqcache.Cache
	Orchestrator   *orchestrator.Orchestrator
	Monitor        *metrics.LatencyMonitor

	// HTTP surface
	RetrieveHandler *handlers.RetrieveHandler
	StreamHandler   *handlers.StreamHandler
	MetricsHandler  *handlers.MetricsHandler
	APIHandler      *handlers.APIHandler

	cron *cron.Cron
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	llmService, err := llm.NewLLMService(cfg, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize llm service: %w", err)
	}
	app.LLMService = llmService
	app.Embedder = embeddings.NewService(llmService, cfg.Gemini.EmbedDimension, logger)

	// Load the ingested chunk corpus into the retriever fallback caches
	chunks, err := retrieval.LoadCorpus(ctx, cfg.Ingest.ChunkFile, storageManager.ChunkStorage(), logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load chunk corpus: %w", err)
	}
	logger.Info().Int("chunks", len(chunks)).Msg("Chunk corpus loaded")

	index := retrieval.NewChunkIndex(chunks, app.Embedder, logger)
	timeout := cfg.RetrievalTimeout()
	vector := retrieval.NewVectorRetriever(cfg.Retrieval.VectorEndpoint, timeout, index, logger)
	graph := retrieval.NewGraphRetriever(cfg.Retrieval.GraphEndpoint, timeout, index, logger)

	faqCache, err := faqcache.NewCache(ctx, storageManager.FAQStorage(), app.Embedder,
		cfg.FAQ.SimilarityThreshold, cfg.FAQ.DefaultTTLDays, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize faq cache: %w", err)
	}
	if cfg.FAQ.SeedDefaults {
		if err := faqCache.SeedDefaults(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed default FAQ entries")
		}
	}
	app.FAQCache = faqCache

	app.Monitor = metrics.NewLatencyMonitor()
	orch, err := orchestrator.New(orchestrator.Dependencies{
		Classifier:  analysis.NewClassifier(cfg.SafetyLatencyBudget(), logger),
		Selector:    strategy.NewSelector(logger),
		Rewriter:    rewrite.NewRewriter(llmService, logger),
		Vector:      vector,
		Graph:       graph,
		Decomposer:  decompose.NewDecomposer(llmService, vector, graph, cfg.Retrieval.EvidenceLimit, logger),
		Synthesizer: synthesis.NewSynthesizer(llmService, cfg.Retrieval.EvidenceLimit, logger),
		FAQCache:    faqCache,
		LLMService:  llmService,
		Monitor:     app.Monitor,
		Config:      cfg,
		Logger:      logger,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize orchestrator: %w", err)
	}
	app.Orchestrator = orch

	app.RetrieveHandler = handlers.NewRetrieveHandler(orch, logger)
	app.StreamHandler = handlers.NewStreamHandler(orch, logger)
	app.MetricsHandler = handlers.NewMetricsHandler(app.Monitor, logger)
	app.APIHandler = handlers.NewAPIHandler(llmService)

	if err := app.startScheduler(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	return app, nil
}

// startScheduler runs the FAQ cache expired-entry sweep on the configured
// cron schedule
func (a *App) startScheduler() error {
	schedule := a.Config.FAQ.SweepSchedule
	if schedule == "" {
		a.Logger.Debug().Msg("FAQ sweep schedule not configured, skipping")
		return nil
	}

	a.cron = cron.New()
	_, err := a.cron.AddFunc(schedule, func() {
		removed, err := a.FAQCache.ClearExpired(context.Background())
		if err != nil {
			a.Logger.Warn().Err(err).Msg("FAQ cache sweep failed")
			return
		}
		if removed > 0 {
			a.Logger.Info().Int("removed", removed).Msg("FAQ cache sweep evicted expired entries")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	a.cron.Start()
	a.Logger.Info().Str("schedule", schedule).Msg("FAQ cache sweep scheduled")
	return nil
}

// Close releases application resources in reverse initialization order
func (a *App) Close() error {
	if a.cron != nil {
		a.cron.Stop()
	}

	var firstErr error
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
