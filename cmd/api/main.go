package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trafficable/tia-backend/internal/ai"
	"github.com/trafficable/tia-backend/internal/archive"
	"github.com/trafficable/tia-backend/internal/cache"
	"github.com/trafficable/tia-backend/internal/config"
	"github.com/trafficable/tia-backend/internal/document"
	"github.com/trafficable/tia-backend/internal/generator"
	httpserver "github.com/trafficable/tia-backend/internal/http"
	"github.com/trafficable/tia-backend/internal/http/handlers"
	"github.com/trafficable/tia-backend/internal/metrics"
	"github.com/trafficable/tia-backend/internal/queue"
	"github.com/trafficable/tia-backend/internal/service"
	"github.com/trafficable/tia-backend/internal/worker"
)

func main() {
	logger := log.New(os.Stdout, "[tia-api] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Printf("failed loading .env files: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportCache := cache.New(ctx, cache.Config{
		Addr:          cfg.RedisAddr,
		Password:      cfg.RedisPassword,
		DB:            cfg.RedisDB,
		SectionTTL:    time.Duration(cfg.SectionCacheTTLHours) * time.Hour,
		ReportTTL:     time.Duration(cfg.ReportCacheTTLHours) * time.Hour,
		JobTTL:        time.Duration(cfg.JobTTLHours) * time.Hour,
		SimilarLookup: cfg.SimilarReportLookup,
		Logger:        logger,
	})
	defer reportCache.Close()

	reportArchive, archiveCloser := setupArchive(ctx, cfg, logger)
	defer archiveCloser()

	producer, consumer, queueCloser := setupQueue(ctx, cfg, logger)
	defer queueCloser()

	collector := metrics.NewCollector()

	selector := ai.NewSelector(ai.SelectorConfig{
		DefaultModel:        cfg.OpenAIModel,
		FastModel:           cfg.OpenAIFastModel,
		HighQualityModel:    cfg.OpenAIHighQualityModel,
		ComplexityThreshold: cfg.ComplexityThreshold,
		ForceDefault:        cfg.ForceDefaultModel,
	})
	aiClient := ai.NewClient(ai.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Timeout:     time.Duration(cfg.OpenAITimeoutMS) * time.Millisecond,
		MaxAttempts: cfg.OpenAIMaxRetries,
		Concurrency: int64(cfg.ConcurrencyLimit),
		Metrics:     collector,
		Logger:      logger,
	})
	if !aiClient.Available() {
		logger.Printf("OPENAI_API_KEY not configured, generation calls will fail")
	}

	sectionGenerator := generator.NewSectionGenerator(generator.SectionGeneratorConfig{
		Cache:            reportCache,
		Client:           aiClient,
		Selector:         selector,
		Metrics:          collector,
		Logger:           logger,
		Temperature:      cfg.OpenAITemperature,
		DefaultMaxTokens: cfg.OpenAIMaxTokens,
	})
	scheduler := generator.NewScheduler(sectionGenerator, time.Duration(cfg.TierPauseMS)*time.Millisecond, logger)
	orchestrator := generator.NewOrchestrator(reportCache, scheduler, collector, logger)

	jobsService := service.NewJobsService(reportCache, producer, logger)
	api := handlers.NewAPI(handlers.APIConfig{
		Jobs:     jobsService,
		Cache:    reportCache,
		Renderer: document.NewRenderer(),
		Archive:  reportArchive,
		Metrics:  collector,
		Logger:   logger,
	})

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      cfg.AuthToken,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if cfg.WorkerEnabled {
		processor := worker.NewProcessor(consumer, orchestrator, reportArchive, logger)
		go processor.Start(ctx)
		logger.Printf("worker enabled and started")
	} else {
		logger.Printf("worker disabled by configuration")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Write timeout is generous because job streams stay open for the
		// whole generation run.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Printf("api listening on :%s", cfg.Port)
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

func setupArchive(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (archive.Archive, func()) {
	if cfg.DatabaseURL == "" {
		logger.Printf("DATABASE_URL not configured, using in-memory archive")
		return archive.NewMemoryArchive(), func() {}
	}

	pgArchive, err := archive.NewPostgresArchive(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Printf("failed to initialize postgres archive, fallback to memory: %v", err)
		return archive.NewMemoryArchive(), func() {}
	}
	logger.Printf("postgres archive initialized")
	return pgArchive, func() {
		pgArchive.Close()
	}
}

func setupQueue(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (queue.Producer, queue.Consumer, func()) {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using local queue fallback")
		local := queue.NewLocalQueue(256, 3, logger)
		return local, local, func() {}
	}

	streams, err := queue.NewStreamsQueue(ctx, queue.StreamsConfig{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		Stream:      cfg.RedisStream,
		DLQStream:   cfg.RedisDLQ,
		Group:       cfg.RedisGroup,
		Consumer:    cfg.RedisConsumer,
		MaxAttempts: 3,
	})
	if err != nil {
		logger.Printf("failed to initialize redis streams queue, fallback to local: %v", err)
		local := queue.NewLocalQueue(256, 3, logger)
		return local, local, func() {}
	}

	logger.Printf("redis streams queue initialized")
	return streams, streams, func() {
		_ = streams.Close()
	}
}
