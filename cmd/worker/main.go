package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/advice"
	"github.com/dvloznov/ledger-dashboard/internal/config"
	"github.com/dvloznov/ledger-dashboard/internal/jobs"
	"github.com/dvloznov/ledger-dashboard/internal/jobs/amqp"
	"github.com/dvloznov/ledger-dashboard/internal/logger"
	"github.com/dvloznov/ledger-dashboard/internal/metrics"
)

func main() {
	envFile := flag.String("env-file", ".env", "Optional .env file to load before reading the environment")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load env file")
	}
	cfg := config.Load()

	// Initialize logger
	log := logger.NewWithConfig(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.AMQPURL == "" {
		log.Fatal().Msg("AMQP_URL is required for the worker")
	}

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	advisor, err := advice.New(ctx, advice.Config{
		Provider: cfg.AdviceProvider,
		APIKey:   cfg.AdviceAPIKey,
		Model:    cfg.AdviceModel,
		BaseURL:  cfg.AdviceBaseURL,
		Timeout:  cfg.AdviceTimeout,
	}, log, metrics.NoOp{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create advisor")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
	}

	log.Info().Str("queue", cfg.AMQPQueue).Str("provider", cfg.AdviceProvider).Msg("Starting worker service")

	adviceHandler := jobs.NewAdviceHandler(advisor)
	handler := func(ctx context.Context, job *jobs.AdviceJob) error {
		log.Info().Str("job_id", job.JobID).Msg("Processing advice job")
		if err := adviceHandler(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("Advice job failed")
			return err
		}
		log.Info().Str("job_id", job.JobID).Bool("fallback", job.Failed).Msg("Advice job completed")
		return nil
	}

	// Start consuming jobs
	if err := client.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop consuming and wait for in-flight jobs
	if err := client.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close AMQP client")
	}

	log.Info().Msg("Worker service exited")
}
