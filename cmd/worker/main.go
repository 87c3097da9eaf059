package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexchny/event-relay/config"
	"github.com/alexchny/event-relay/internal/adapters/airmeet"
	"github.com/alexchny/event-relay/internal/adapters/postgres"
	"github.com/alexchny/event-relay/internal/adapters/redis"
	"github.com/alexchny/event-relay/internal/adapters/sqs"
	"github.com/alexchny/event-relay/internal/jobs"
	"github.com/alexchny/event-relay/internal/logger"
	"github.com/alexchny/event-relay/internal/ports"
	"github.com/alexchny/event-relay/internal/service"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type queueBackend interface {
	ports.JobQueue
	ports.JobSource
}

func main() {
	// load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.MustNew(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateWorker(); err != nil {
		log.Fatal("invalid worker config", zap.Error(err))
	}

	// job spans go to the log at debug level
	tracerProvider := logger.NewTracerProvider(log.Named("trace"))
	otel.SetTracerProvider(tracerProvider)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to flush traces", zap.Error(err))
		}
	}()

	log.Info("starting event-relay worker", zap.Int("concurrency", cfg.WorkerConcurrency))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// connect to database
	db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to db", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close db", zap.Error(err))
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal("failed to migrate db", zap.Error(err))
	}
	log.Info("connected to postgres")

	// locks and the shared Airmeet rate limit live in redis whatever the
	// queue backend is
	redisClient, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis", zap.Error(err))
		}
	}()
	log.Info("connected to redis")

	var queue queueBackend
	switch cfg.QueueBackend {
	case config.QueueBackendSQS:
		sqsClient, err := sqs.NewClient(ctx)
		if err != nil {
			log.Fatal("failed to create sqs client", zap.Error(err))
		}
		queue = sqs.NewQueue(sqsClient, cfg.SQSQueueURL, cfg.SQSDeadLetterURL)
	default:
		queue = redis.NewQueueAdapter(redisClient, cfg.QueueKey)
	}
	log.Info("job queue ready", zap.String("backend", cfg.QueueBackend))

	eventRepo := postgres.NewEventRepo(db)
	lockAdapter := redis.NewLockAdapter(redisClient)

	// Airmeet quota is shared by every worker process
	globalLimiter := redis.NewRateLimiter(redisClient, cfg.AirmeetRateLimit, time.Minute)

	airmeetClient := airmeet.NewAdapter(cfg.AirmeetAccessKey, cfg.AirmeetSecretKey,
		airmeet.WithBaseURL(cfg.AirmeetBaseURL),
		airmeet.WithRateLimit(cfg.AirmeetRateLimit),
		airmeet.WithLogger(log.Named("airmeet")),
	)

	syncer := service.NewEventSyncer(
		eventRepo,
		airmeetClient,
		lockAdapter,
		globalLimiter,
		cfg.LockTTL,
		log,
	)

	registry := jobs.NewRegistry()
	jobs.Register(registry, syncer.Definition())

	runner := jobs.NewRunner(queue, registry, log,
		jobs.WithConcurrency(cfg.WorkerConcurrency),
		jobs.WithMaxAttempts(cfg.JobMaxAttempts),
		jobs.WithMiddleware(
			jobs.Recover(log),
			jobs.Logging(log),
			jobs.Tracing(),
			jobs.Timeout(cfg.JobTimeout),
		),
	)

	scheduler := jobs.NewScheduler(cfg.ScheduleSpec, eventRepo, queue, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	// wait for shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("shutdown signal received, stopping workers")
	scheduler.Stop()
	cancel()

	select {
	case <-done:
	case <-time.After(cfg.JobTimeout + 5*time.Second):
		log.Warn("workers did not stop in time")
	}
	log.Info("shutdown complete")
}
