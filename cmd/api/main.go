package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/quizfinderz-backend/api/controllers"
	"github.com/angelmondragon/quizfinderz-backend/api/middleware"
	"github.com/angelmondragon/quizfinderz-backend/api/routes"
	"github.com/angelmondragon/quizfinderz-backend/internal/questions"
	"github.com/angelmondragon/quizfinderz-backend/internal/quizzes"
	"github.com/angelmondragon/quizfinderz-backend/pkg/config"
	"github.com/angelmondragon/quizfinderz-backend/pkg/db"
	"github.com/angelmondragon/quizfinderz-backend/pkg/instance"
	"github.com/angelmondragon/quizfinderz-backend/pkg/llm"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
	"github.com/angelmondragon/quizfinderz-backend/pkg/memstore"
	"github.com/angelmondragon/quizfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/quizfinderz-backend/pkg/migrate"
	"github.com/angelmondragon/quizfinderz-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

// coordinator is what the api needs from redis or its in-process stand-in.
type coordinator interface {
	quizzes.Locker
	middleware.RateLimiterStore
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i].Close())
		}
		if errs != nil {
			logg.Error(context.Background(), "error closing resources", errs)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		coord  coordinator
		redisP controllers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)
		coord, redisP = redisClient, redisClient
	} else {
		logg.Warn(ctx, "redis not configured, using in-process locks and rate limits")
		coord = memstore.New(memstore.Options{
			Size:       cfg.RateLimit.MemoryKeys,
			CounterTTL: cfg.RateLimit.GenerateWindow,
			LockTTL:    cfg.Generation.LockTTL,
		})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engineOpts := questions.EngineOptions{
		Logger:       logg,
		Metrics:      metrics.NewGenerationMetrics(registry),
		MinQuestions: cfg.Generation.MinQuestions,
		MaxQuestions: cfg.Generation.MaxQuestions,
	}
	client, err := llm.New(ctx, cfg.LLM)
	switch {
	case err == nil:
		engineOpts.Generative = questions.NewGenerative(client, questions.GenerativeOptions{
			Timeout:         cfg.LLM.Timeout,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
			Temperature:     cfg.LLM.Temperature,
		})
		logg.Info(logg.WithField(ctx, "llm", client.Name()), "generative questions enabled")
	case errors.Is(err, llm.ErrNotConfigured):
		logg.Warn(ctx, "llm not configured, serving rule-based questions only")
	default:
		logg.Error(ctx, "failed to create llm client", err)
		os.Exit(1)
	}

	quizService, err := quizzes.NewService(quizzes.ServiceParams{
		Repo:        quizzes.NewRepository(dbClient.DB()),
		Generator:   questions.NewEngine(engineOpts),
		Locker:      coord,
		Logger:      logg,
		LockTTL:     cfg.Generation.LockTTL,
		MaxProducts: cfg.Generation.MaxProducts,
	})
	if err != nil {
		logg.Error(ctx, "failed to create quiz service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisP, coord, registry, quizService),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}
