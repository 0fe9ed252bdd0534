package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dvloznov/ledger-dashboard/internal/advice"
	"github.com/dvloznov/ledger-dashboard/internal/api"
	"github.com/dvloznov/ledger-dashboard/internal/backend"
	"github.com/dvloznov/ledger-dashboard/internal/config"
	"github.com/dvloznov/ledger-dashboard/internal/jobs"
	"github.com/dvloznov/ledger-dashboard/internal/jobs/amqp"
	"github.com/dvloznov/ledger-dashboard/internal/jobs/inmemory"
	"github.com/dvloznov/ledger-dashboard/internal/ledger"
	"github.com/dvloznov/ledger-dashboard/internal/logger"
	"github.com/dvloznov/ledger-dashboard/internal/metrics"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env-file", ".env", "Optional .env file to load before reading the environment")
		port    = flag.String("port", "", "HTTP server port (overrides PORT)")
	)
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load env file")
	}

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	log := logger.NewWithConfig(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheus("ledger")
	if err := rec.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Persistence
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid backend configuration")
	}
	repo, err := backend.Open(ctx, backendCfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", string(backendCfg.Type)).Msg("Failed to open backend")
	}

	svc := ledger.NewService(repo, log,
		ledger.WithMetrics(rec),
		ledger.WithBackendName(string(backendCfg.Type)),
		ledger.WithSeedDemo(cfg.SeedDemo),
	)
	if err := svc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start ledger")
	}
	defer svc.Close()

	// Initialize job infrastructure
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobStore := inmemory.NewStore()
	var (
		publisher jobs.Publisher
		stopJobs  func(context.Context) error
	)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		go func() {
			if err := client.ConsumeResults(workerCtx, jobStore); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Advice result consumer stopped")
			}
		}()
		publisher = client
		stopJobs = client.Stop
		log.Info().Str("queue", cfg.AMQPQueue).Msg("Advice jobs are handled by external workers")
	} else {
		advisor, err := advice.New(ctx, advice.Config{
			Provider: cfg.AdviceProvider,
			APIKey:   cfg.AdviceAPIKey,
			Model:    cfg.AdviceModel,
			BaseURL:  cfg.AdviceBaseURL,
			Timeout:  cfg.AdviceTimeout,
		}, log, rec)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create advisor")
		}

		queue := inmemory.NewQueue(100, jobStore)
		log.Info().Msg("Starting job worker")
		if err := queue.Start(workerCtx, jobs.NewAdviceHandler(advisor)); err != nil {
			log.Fatal().Err(err).Msg("Failed to start job worker")
		}
		publisher = queue
		stopJobs = queue.Stop
	}

	handler := api.NewRouter(api.Deps{
		Ledger:         svc,
		Publisher:      publisher,
		JobStore:       jobStore,
		Metrics:        rec,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Backend:        string(backendCfg.Type),
		RequireAuth:    cfg.RequireAuth,
		Log:            log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", string(backendCfg.Type)).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job processing and wait for in-flight jobs
	if err := stopJobs(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job processing")
	}
	cancelWorker()

	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job publisher")
	}

	log.Info().Msg("Server exited")
}
