package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/config"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/middleware"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/router"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.RunMigrations {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	cbCfg := infra.DefaultCBConfig("smtp")
	cbCfg.OnStateChange = func(name string, from, to infra.CBState) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		m.SetCircuitBreakerState(name, int(to))
	}
	mailCB := infra.NewCircuitBreaker(cbCfg)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	limiter.StartPurge(ctx)

	deps := router.Deps{
		Metrics:     m,
		Dispatcher:  worker.NewDispatcher(rdb),
		MailCB:      mailCB,
		RateLimiter: limiter,
	}
	svcs := router.NewServices(cfg, db, rdb, deps)

	// Worker handlers are wired here (composition root) so that the pool
	// shares the same services as the HTTP surface.
	mailer := infra.NewMailer(cfg)
	if !mailer.Configured() {
		log.Warn().Msg("SMTP_HOST not set: supervisor emails will be dropped")
	}
	reposicionW := worker.NewReposicionWorker(svcs.Inventario, deps.Dispatcher, cfg.SupervisorEmail)

	pool := worker.NewPool(rdb, m)
	pool.Register(worker.QueueEmail, worker.JobEmail, worker.NewEmailWorker(mailer, mailCB).Process)
	pool.Register(worker.QueueReposicion, worker.JobReposicion, reposicionW.Process)
	workers := pool.Start(ctx, cfg.WorkerPoolSize)

	worker.StartStockAlertCron(ctx, worker.StockAlertCronConfig{
		Source:   repository.NewProductRepository(db),
		Queue:    deps.Dispatcher,
		Worker:   reposicionW,
		Interval: cfg.StockAlertInterval,
	})

	r := router.New(cfg, db, rdb, svcs, deps)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: it would cut the long-lived PDA WebSockets.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("picking backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	workers.Wait()
	log.Info().Msg("server exited")
}
