package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/foldercheck/internal/api"
	"github.com/RishiKendai/foldercheck/internal/config"
	"github.com/RishiKendai/foldercheck/internal/configs/env"
	"github.com/RishiKendai/foldercheck/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/foldercheck/internal/infra/redis"
	"github.com/RishiKendai/foldercheck/internal/logger"
	"github.com/RishiKendai/foldercheck/internal/metrics"
	"github.com/RishiKendai/foldercheck/internal/plagiarism"
	"github.com/RishiKendai/foldercheck/internal/preprocess"
	"github.com/RishiKendai/foldercheck/internal/repository"
	"github.com/RishiKendai/foldercheck/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Starting foldercheck server")

	metrics.InitPrometheus()

	// Metrics are served on their own port
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Metrics server failed to start")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	artifactsRepo := repository.NewArtifactsRepository(mongoRepo)
	resultsRepo := repository.NewResultsRepository(mongoRepo)

	preprocessSvc := preprocess.NewService(cfg.StorageRoot, cfg.ExtractRoot, cfg.MaxZipEntryBytes)

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.WorkerPoolSize)
	defer workerPool.Close()

	runner := plagiarism.NewRunner(preprocessSvc, plagiarism.Deps{
		Reports:      resultsRepo,
		Summaries:    artifactsRepo,
		Status:       redisClient.Client,
		Pool:         workerPool,
		Options:      cfg.CompareOptions(),
		IncludeFiles: cfg.IncludeFileComparisons,
	})

	// Missing or malformed submissions will not succeed on retry
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey,
		preprocess.ErrNoSubmissions, preprocess.ErrInvalidID)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		runner,
		retryHandler,
		cfg.StreamRetentionDuration,
		cfg.ComputationTimeout,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	handler := api.NewHandler(cfg, runner, resultsRepo, artifactsRepo, redisClient.Client)
	router := api.SetupRoutes(cfg, handler)

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}

	consumerCancel()
	<-consumerDone

	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer waitCancel()
	if err := handler.Wait(waitCtx); err != nil {
		log.Warn().Err(err).Msg("Background checks still running at shutdown")
	}

	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
