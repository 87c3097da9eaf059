package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexchny/event-relay/config"
	"github.com/alexchny/event-relay/internal/adapters/postgres"
	"github.com/alexchny/event-relay/internal/adapters/redis"
	"github.com/alexchny/event-relay/internal/adapters/sqs"
	"github.com/alexchny/event-relay/internal/api"
	"github.com/alexchny/event-relay/internal/api/handlers"
	"github.com/alexchny/event-relay/internal/logger"
	"github.com/alexchny/event-relay/internal/ports"
	"github.com/alexchny/event-relay/internal/service"
	"github.com/alexchny/event-relay/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.MustNew(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateAPI(); err != nil {
		log.Fatal("invalid api config", zap.Error(err))
	}

	log.Info("starting event-relay api", zap.String("port", cfg.ServerPort))

	ctx := context.Background()

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

	// job queue
	queue, err := newJobQueue(ctx, cfg)
	if err != nil {
		log.Fatal("failed to create job queue", zap.Error(err))
	}
	defer queue.close()
	log.Info("job queue ready", zap.String("backend", cfg.QueueBackend))

	health := map[string]handlers.HealthCheck{"postgres": db.PingContext}
	if queue.ping != nil {
		health[cfg.QueueBackend] = queue.ping
	}

	// create services
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionMaxAge, cfg.IsProduction())
	requester := service.NewSyncRequester(queue.JobQueue, log)
	authenticator := service.NewAdminAuthenticator(cfg.AdminEmail, cfg.AdminPasswordHash)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(api.Deps{
		Sessions:  sessions,
		Auth:      authenticator,
		Requester: requester,
		Events:    postgres.NewEventRepo(db),
		Queue:     queue.inspector,
		Health:    health,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

type jobQueue struct {
	ports.JobQueue
	inspector handlers.QueueInspector
	ping      handlers.HealthCheck
	close     func()
}

// newJobQueue returns the configured backend. Only the redis backend can
// report its backlog and be pinged.
func newJobQueue(ctx context.Context, cfg *config.Config) (*jobQueue, error) {
	switch cfg.QueueBackend {
	case config.QueueBackendSQS:
		client, err := sqs.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return &jobQueue{
			JobQueue: sqs.NewQueue(client, cfg.SQSQueueURL, cfg.SQSDeadLetterURL),
			close:    func() {},
		}, nil
	default:
		client, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		adapter := redis.NewQueueAdapter(client, cfg.QueueKey)
		return &jobQueue{
			JobQueue:  adapter,
			inspector: adapter,
			ping:      client.Ping,
			close:     func() { _ = client.Close() },
		}, nil
	}
}
