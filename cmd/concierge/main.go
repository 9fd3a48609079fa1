// cmd/concierge/main.go
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

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/common/database"
	"crm-concierge/internal/common/logger"
	"crm-concierge/internal/common/observability"
	"crm-concierge/internal/core/aggregator"
	"crm-concierge/internal/core/catalog"
	"crm-concierge/internal/core/planner"
	"crm-concierge/internal/nlu"
	"crm-concierge/internal/session"

	"crm-concierge/internal/api"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting concierge...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// The catalog is fixed at build time; refuse to start if any template is
	// malformed.
	if err := catalog.Validate(); err != nil {
		zapLog.Fatal("catalog validation failed", zap.Error(err))
	}
	zapLog.Info("Query catalog validated")

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

	// --- Init Gemini ---
	fallback := nlu.NewKeywordClassifier(cfg.NLU)
	gemini, err := nlu.NewGeminiClient(ctx, cfg.GenAI, fallback, log)
	if err != nil {
		zapLog.Fatal("genai client failed", zap.Error(err))
	}
	zapLog.Info("Gemini client initialized", zap.String("model", cfg.GenAI.Model))

	// --- Assemble the pipeline ---
	queryTimeout := time.Duration(cfg.Query.Timeout) * time.Millisecond
	agg := aggregator.New(pg, log, queryTimeout)
	pl := planner.New(cfg.Query.MaxLimit)
	sessions := session.NewStore(rds.Client, cfg.Session)

	svc := api.NewService(cfg, log, pg, agg, pl, gemini, gemini, sessions)
	router := api.NewRouter(svc, cfg, log, obs)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
