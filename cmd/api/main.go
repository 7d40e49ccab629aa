package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prince-ramoliya/founder-harmony/internal/app/migrate"
	"github.com/prince-ramoliya/founder-harmony/internal/events"
	"github.com/prince-ramoliya/founder-harmony/internal/events/kafka"
	httpx "github.com/prince-ramoliya/founder-harmony/internal/http"
	"github.com/prince-ramoliya/founder-harmony/internal/repository/postgres"
	"github.com/prince-ramoliya/founder-harmony/internal/service/audit"
	"github.com/prince-ramoliya/founder-harmony/internal/service/equity"
	"github.com/prince-ramoliya/founder-harmony/internal/service/ledger"
	"github.com/prince-ramoliya/founder-harmony/internal/service/workspace"
	"github.com/prince-ramoliya/founder-harmony/internal/ws"
	"github.com/prince-ramoliya/founder-harmony/pkg/config"
	"github.com/prince-ramoliya/founder-harmony/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	hub := ws.NewHub()

	publishers := events.Fanout{events.NewHubPublisher(hub)}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kafkaPub.Close(); err != nil {
				log.Warn("kafka publisher close failed", "error", err)
			}
		}()
		publishers = append(publishers, kafkaPub)
		log.Info("kafka mutation stream enabled", "topic", cfg.KafkaTopic)
	}

	workspaceSvc := workspace.New(repo, log)
	equitySvc := equity.New(repo, publishers, log, cfg)
	ledgerSvc := ledger.New(repo, publishers, log)
	auditSvc := audit.New(repo, log)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, workspaceSvc, equitySvc, ledgerSvc, auditSvc, hub, limiter, cfg.CashFlowMonthsBack, cfg.AuditPageSize, cfg.MetricsEnabled, pool.Ping)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
