package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ProxyPool/internal/cache"
	"ProxyPool/internal/config"
	"ProxyPool/internal/domain"
	"ProxyPool/internal/infrastructure/fetcher"
	"ProxyPool/internal/infrastructure/scheduler"
	"ProxyPool/internal/infrastructure/storage"
	"ProxyPool/internal/logging"
	"ProxyPool/internal/ports"
	"ProxyPool/internal/quality"
	"ProxyPool/internal/source"
	"ProxyPool/internal/usecase"
)

// Application wires config to use cases and lifecycle orchestration. All
// collaborators are constructed once here and passed by reference; nothing
// reads global state after startup.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     ports.ProxyStore
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance, failing fast on any
// configuration or storage problem.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.New(ctx, cfg.Database, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	registry := source.NewRegistry()
	registry.Register(fetcher.NewPlaintextFetcher(nil))
	registry.Register(fetcher.NewJSONAPIFetcher(nil))
	registry.Register(fetcher.NewHTMLTableFetcher(nil))
	registry.Register(fetcher.NewRegexFetcher(nil))
	candidateSource := fetcher.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	testCount, maxRetries, timeout := cfg.Verify.Presets()
	qualityCfg := quality.Config{
		TestCount:       testCount,
		MaxRetries:      maxRetries,
		Timeout:         timeout,
		TestURLs:        cfg.Verify.TestURLs,
		WeightSpeed:     cfg.Verify.WeightSpeed,
		WeightSuccess:   cfg.Verify.WeightSuccess,
		WeightStability: cfg.Verify.WeightStability,
	}

	prober := quality.NewProber(qualityCfg, baseLogger.With("component", "prober"))
	evaluator := quality.NewEvaluator(prober, store, qualityCfg, baseLogger.With("component", "evaluator"))
	verifier := usecase.NewVerifier(evaluator, store, cfg.Verify.Concurrency, baseLogger.With("component", "verifier"))

	pool := usecase.NewPool(store, cache.New[string, []domain.Proxy](), baseLogger.With("component", "pool"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   candidateSource,
		Verifier: verifier,
		Store:    store,
		Pool:     pool,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewTickerScheduler(cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		pipeline:  pipeline,
		scheduler: sched,
	}, nil
}

// Run executes an initial collection pass, then keeps re-verifying stored
// proxies on the configured interval until the process is signalled.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	verified, err := a.pipeline.Collect(ctx)
	if err != nil {
		a.logger.Error("initial collection failed", "error", err)
	} else {
		a.logger.Info("initial collection finished", "verified", verified)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	sig := <-sigChan
	a.logger.Info("shutting down", "signal", sig.String())

	if err := a.scheduler.Stop(ctx); err != nil {
		a.logger.Error("stop scheduler", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("close storage", "error", err)
	}

	return nil
}
