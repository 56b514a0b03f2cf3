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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/txledger/internal/adapter/http"
	"github.com/iho/txledger/internal/adapter/csvfile"
	"github.com/iho/txledger/internal/adapter/http/handler"
	"github.com/iho/txledger/internal/adapter/http/middleware"
	"github.com/iho/txledger/internal/adapter/idgen"
	redisRepo "github.com/iho/txledger/internal/adapter/repository/redis"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/config"
	"github.com/iho/txledger/internal/infrastructure/logger"
	"github.com/iho/txledger/internal/infrastructure/metrics"
	"github.com/iho/txledger/internal/infrastructure/redis"
	"github.com/iho/txledger/internal/usecase"
)

const (
	limiterEvictInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

// app is the wired server: the root handler plus everything that must be
// started or released alongside it.
type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := buildApp(ctx, cfg, log, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise server")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("failed to release resources")
		}
	}()

	if a.limiter != nil {
		go a.limiter.RunEviction(ctx, limiterEvictInterval, limiterMaxIdle)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("data_dir", cfg.DataDir).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("server failed")
		return
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

// buildApp wires storage, use cases and the HTTP layer from cfg. Metrics are
// registered with reg.
func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	dialect, err := csvfile.ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	policy, err := domain.ParseTransferPolicy(cfg.TransferPolicy)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	a := &app{}

	var (
		m           *metrics.Metrics
		httpMetrics *middleware.HTTPMetrics
		metricsH    http.Handler
	)
	if cfg.MetricsEnabled {
		m = metrics.New(reg)
		httpMetrics = middleware.NewHTTPMetrics(reg)
		metricsH = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	store := csvfile.NewFileStore(dialect, log.With().Str("component", "csvfile").Logger())
	ledgerUC := usecase.NewLedgerUseCase(store, nil, m, log.With().Str("component", "ledger").Logger())
	creds := csvfile.NewCredentialFile(cfg.PasswordHashCost, log.With().Str("component", "credentials").Logger())
	accountUC := usecase.NewAccountUseCase(ledgerUC, store, creds, idgen.NewULIDGenerator(), policy, cfg.DataDir)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(accountUC),
		Logger:             log,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		HTTPMetrics:        httpMetrics,
		MetricsHandler:     metricsH,
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, redis.ClientOptions{
			ConnectTimeout: cfg.RedisConnectTimeout,
			PoolSize:       cfg.RedisPoolSize,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		log.Info().Msg("connected to redis")

		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(client)
		routerCfg.HealthHandler = handler.NewHealthHandler(cfg.DataDir, client)
	} else {
		log.Warn().Msg("REDIS_URL not set, idempotency keys are ignored")
		routerCfg.HealthHandler = handler.NewHealthHandler(cfg.DataDir, nil)
	}

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.RateLimiter = a.limiter
	}

	a.handler = httpAdapter.NewRouter(routerCfg)
	return a, nil
}
