package worker

// stock_alert_cron.go
// Background goroutine that periodically looks for active locations at or
// below their minimum stock and queues a replenishment check for each one.
// The replenishment worker decides whether a new request is needed.

import (
	"context"
	"errors"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/rs/zerolog/log"
)

const defaultStockAlertInterval = 5 * time.Minute

// LowStockSource is satisfied by repository.ProductRepository.
type LowStockSource interface {
	ListLowStock(ctx context.Context) ([]model.ProductLocation, error)
}

type reposicionEnqueuer interface {
	EnqueueReposicion(ctx context.Context, payload ReposicionJobPayload) error
}

// StockAlertCronConfig holds all dependencies for the cron goroutine.
type StockAlertCronConfig struct {
	Source   LowStockSource
	Queue    reposicionEnqueuer
	Worker   *ReposicionWorker // used inline when the queue is unavailable
	Interval time.Duration
}

// StartStockAlertCron launches the ticker goroutine. It respects ctx for
// graceful shutdown.
func StartStockAlertCron(ctx context.Context, cfg StockAlertCronConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultStockAlertInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("stock_alert_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_alert_cron: shutting down")
				return
			case <-ticker.C:
				runStockAlertTick(ctx, cfg)
			}
		}
	}()
}

// runStockAlertTick returns the number of locations handed off.
func runStockAlertTick(ctx context.Context, cfg StockAlertCronConfig) int {
	locs, err := cfg.Source.ListLowStock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock_alert_cron: failed to query low stock")
		return 0
	}
	if len(locs) == 0 {
		return 0
	}

	log.Info().Int("count", len(locs)).Msg("stock_alert_cron: locations below minimum")

	handed := 0
	for i := range locs {
		loc := &locs[i]
		err := cfg.Queue.EnqueueReposicion(ctx, ReposicionJobPayload{LocationID: loc.ID.String()})
		if errors.Is(err, ErrQueueUnavailable) && cfg.Worker != nil {
			err = cfg.Worker.handleLocation(ctx, loc.ID)
		}
		if err != nil {
			log.Warn().Err(err).Str("ubicacion", loc.CodigoUbicacion).Msg("stock_alert_cron: could not hand off location")
			continue
		}
		handed++
	}
	return handed
}
