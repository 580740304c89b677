// cmd/recommender/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/martin-coser/ArqViewBack-sub000/internal/common/aws"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/config"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/database"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/logger"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/observability"
	"github.com/martin-coser/ArqViewBack-sub000/internal/notify"
	"github.com/martin-coser/ArqViewBack-sub000/internal/recommend"
	"github.com/martin-coser/ArqViewBack-sub000/internal/server"
	"github.com/martin-coser/ArqViewBack-sub000/internal/storage"
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

	zapLog.Info("Starting recommender...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("recommender")
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

	// --- Init Redis weight cache with retry ---
	var weightsCache recommend.WeightsCache
	if cfg.Recommendation.CacheEnabled {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		zapLog.Info("Redis connected successfully")

		weightsCache = recommend.NewRedisWeightsCache(
			rc.Client,
			config.GetDuration(cfg.Recommendation.CacheTTL),
			log,
		)
	}

	// --- Init delivery channels ---
	var mailer recommend.Mailer
	if cfg.Notifications.Email.Enabled && cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		mailer = notify.NewEmailSender(sesClient, log)
		zapLog.Info("SES email channel enabled")
	}

	var smsSender recommend.SMSSender
	if cfg.Notifications.SMS.Enabled && cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		smsSender = notify.NewSMSSender(snsClient, cfg.Integrations.AWS.SNS.DefaultSMSSenderID, log)
		zapLog.Info("SNS sms channel enabled")
	}

	store := storage.New(pg.DB)
	svc := recommend.NewService(
		recommend.Config{
			MaxResults:        cfg.Recommendation.MaxResults,
			RelativeThreshold: cfg.Recommendation.RelativeThreshold,
			NotifyThreshold:   cfg.Recommendation.NotifyThreshold,
			EmailEnabled:      cfg.Notifications.Email.Enabled,
			SMSEnabled:        cfg.Notifications.SMS.Enabled,
			FromEmail:         cfg.Notifications.Email.FromEmail,
		},
		store, weightsCache, mailer, smsSender, log, obs,
	)

	srv, err := server.New(svc, log)
	if err != nil {
		zapLog.Fatal("server init failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Recommender stopped")
}
