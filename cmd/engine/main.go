// cmd/engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gastino/internal/ai"
	"gastino/internal/alert"
	"gastino/internal/api/admin"
	"gastino/internal/archive"
	"gastino/internal/common/aws"
	"gastino/internal/common/config"
	"gastino/internal/common/database"
	"gastino/internal/common/logger"
	"gastino/internal/common/observability"
	"gastino/internal/engine/classifier"
	"gastino/internal/engine/handlers/autoreply"
	"gastino/internal/engine/handlers/escalation"
	"gastino/internal/engine/handlers/orders"
	"gastino/internal/engine/handlers/reservations"
	"gastino/internal/engine/resolver"
	"gastino/internal/engine/router"
	"gastino/internal/state"
	"gastino/internal/store"
	"gastino/internal/transport/channel"
	"gastino/internal/transport/webhook"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting message routing engine...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	db := store.New(pg.DB)
	if err := db.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	var rds *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rds, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rds.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rds.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional) with retry ---
	var archiver archive.Archiver = archive.Nop{}
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		archiver = archive.NewIndexer(esClient, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Ops alerting (optional AWS clients) ---
	var snsClient *aws.SNSClient
	var sesClient *aws.SESClient
	if cfg.Alerts.Enabled {
		if snsClient, err = aws.NewSNSClient(ctx, cfg.Alerts.AWSRegion); err != nil {
			zapLog.Warn("SNS client unavailable, topic alerts disabled", zap.Error(err))
		}
		if cfg.Alerts.Email.Enabled {
			if sesClient, err = aws.NewSESClient(ctx, cfg.Alerts.AWSRegion); err != nil {
				zapLog.Warn("SES client unavailable, email alerts disabled", zap.Error(err))
			}
		}
	}
	alerter := alert.NewManager(cfg.Alerts, snsClient, sesClient, obs, log)

	// --- Engine wiring ---
	provider := ai.NewOpenAIProvider(cfg.AI)
	sender := channel.NewClient(cfg.Channel, log)
	states := state.New(rds.Client, config.GetDuration(cfg.Engine.StateTTL), log)
	tenants := resolver.New(db, rds.Client, config.GetDuration(cfg.Engine.TenantCacheTTL), log)

	intents := classifier.New(provider, classifier.Config{
		Timeout:    config.GetDuration(cfg.AI.Timeout),
		MaxRetries: cfg.AI.MaxRetries,
		MaxTokens:  cfg.AI.MaxTokens,
	}, log)

	handlers := router.Handlers{
		AutoReply: autoreply.NewHandler(provider, autoreply.Config{
			Timeout:     config.GetDuration(cfg.AI.Timeout),
			MaxRetries:  cfg.AI.MaxRetries,
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
		}, log),
		Orders:       orders.NewHandler(db, sender, alerter, log),
		Reservations: reservations.NewHandler(db, sender, alerter, log),
		Escalation:   escalation.NewHandler(sender, alerter, log),
	}

	engine := router.New(
		router.Config{
			MessageTimeout: config.GetDuration(cfg.Engine.MessageTimeout),
			HistoryLimit:   cfg.Engine.HistoryLimit,
			ConfirmEmoji:   cfg.Channel.ConfirmEmoji,
		},
		tenants, db, db, db, states, intents, handlers,
		sender, archiver, alerter, obs, log,
	)
	dispatcher := router.NewDispatcher(engine, log)

	// --- HTTP surface ---
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	webhook.NewHandler(cfg.Channel.VerifyToken, dispatcher, log).Register(mux)
	admin.NewHandler(db, tenants, cfg.Admin.Token, log).Register(mux)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("http server shutdown incomplete", zap.Error(err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("dispatcher drained incompletely", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
