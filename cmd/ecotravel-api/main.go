// README: API entrypoint; wires config, optional backing stores, the AI pipeline and the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ecotravel/internal/ai"
	"ecotravel/internal/config"
	httptransport "ecotravel/internal/http"
	"ecotravel/internal/http/handlers"
	"ecotravel/internal/http/middleware"
	"ecotravel/internal/infra"
	"ecotravel/internal/maps"
	"ecotravel/internal/metrics"
	"ecotravel/internal/modules/aiusage"
	"ecotravel/internal/modules/estimate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	estimateOpts := []estimate.Option{estimate.WithObserver(m)}

	var db *pgxpool.Pool
	var usageSvc *aiusage.Service
	if cfg.DB.DSN != "" {
		db, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer db.Close()

		store := aiusage.NewStore(db, cfg.Limits.MonthlyTokens)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal("ensure ai_usage schema", zap.Error(err))
		}
		usageSvc = aiusage.NewService(store)
		estimateOpts = append(estimateOpts, estimate.WithQuota(usageSvc))
		logger.Info("monthly quota enabled", zap.Int("tokens", cfg.Limits.MonthlyTokens))
	}

	var rdb *redis.Client
	var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.Limits.RatePerMinute)
	if cfg.Redis.Addr != "" {
		rdb, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, cfg.Limits.RatePerMinute)
	}

	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps client", zap.Error(err))
		}
		estimateOpts = append(estimateOpts, estimate.WithDistanceChecker(routes))
	}

	var verifier infra.CallerVerifier
	if cfg.Firebase.ProjectID != "" {
		callers, err := infra.NewFirebaseCallers(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Fatal("firebase auth", zap.Error(err))
		}
		verifier = callers
	}

	var acquirer *ai.Acquirer
	if cfg.AI.APIKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.APIKey)
		if err != nil {
			logger.Fatal("gemini client", zap.Error(err))
		}
		defer provider.Close()
		acquirer = ai.NewAcquirer(provider, logger,
			ai.WithMaxCandidates(cfg.AI.MaxCandidates),
			ai.WithRecorder(m),
		)
	} else {
		logger.Warn("GOOGLE_API_KEY not set; estimates will fail until it is configured")
	}

	estimateSvc := estimate.NewService(acquirer, logger, estimateOpts...)

	breaker := middleware.NewCircuitBreaker()
	breaker.OnStateChange = func(from, to middleware.CircuitState) {
		logger.Warn("ai circuit state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	srv := httptransport.NewServer(httptransport.ServerDeps{
		Estimate:       estimateSvc,
		Usage:          usageSvc,
		Health:         handlers.NewHealthHandler(db, rdb, estimateSvc.Configured()),
		Limiter:        limiter,
		Breaker:        breaker,
		Verifier:       verifier,
		Metrics:        m,
		Logger:         logger,
		AITimeout:      cfg.AI.Timeout,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("ecotravel api listening", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
