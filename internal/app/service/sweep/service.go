package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kisancoop/dairyops/internal/app/service/inventory"
	"github.com/kisancoop/dairyops/internal/app/service/notification_log"
	"github.com/kisancoop/dairyops/internal/app/service/payment"
	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/config"
	"github.com/kisancoop/dairyops/pkg/tool"
)

// Runner drives the periodic maintenance jobs: payment expiry, stuck
// PENDING reconciliation, and inventory expiry notifications. Every job is
// idempotent so overlapping or retried runs are harmless.
type Runner struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	payments  payment.Manager
	inventory inventory.Manager
	eventLog  *notification_log.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(cfg *config.Config, log *zap.SugaredLogger, payments payment.Manager, inv inventory.Manager, eventLog *notification_log.Service) *Runner {
	return &Runner{cfg: cfg, log: log, payments: payments, inventory: inv, eventLog: eventLog}
}

func (r *Runner) loop(ctx context.Context, name string, interval time.Duration, job func(context.Context)) {
	if interval <= 0 {
		r.log.Warnw("sweep disabled, interval not set", "job", name)
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job(ctx)
			}
		}
	}()
}

func (r *Runner) expirePayments(ctx context.Context) {
	n, err := r.payments.ExpireStale(ctx, time.Now())
	if err != nil {
		r.log.Errorw("payment expiry sweep failed", "err", err)
		return
	}
	if n > 0 {
		r.log.Infow("expired stale payments", "count", n)
	}
}

func (r *Runner) pollPendingPayments(ctx context.Context) {
	n, err := r.payments.PollPending(ctx, 50)
	if err != nil {
		r.log.Errorw("pending payment poll failed", "err", err)
		return
	}
	if n > 0 {
		r.log.Infow("reconciled pending payments", "count", n)
	}
}

func (r *Runner) emitExpiryAlerts(ctx context.Context) {
	window := time.Duration(r.cfg.Inventory.ExpiryWarningDays) * 24 * time.Hour
	stocks, err := r.inventory.ExpiringStock(ctx, window)
	if err != nil {
		r.log.Errorw("expiring stock scan failed", "err", err)
		return
	}
	for _, stock := range stocks {
		medicine := stock.MedicineID
		if stock.Medicine != nil {
			medicine = stock.Medicine.Name
		}
		data, err := tool.MarshalJSONMap(map[string]any{
			"stock_id":    stock.ID,
			"medicine":    medicine,
			"batch":       stock.BatchNumber,
			"location_id": stock.LocationID,
			"expiry_date": stock.ExpiryDate,
			"quantity":    stock.TotalQuantity,
		})
		if err != nil {
			r.log.Errorw("expiry alert payload failed", "stock_id", stock.ID, "err", err)
			continue
		}
		r.eventLog.Save(ctx, &models.WebhookEventLog{
			EventType: "medicine.expiring",
			State:     "EXPIRING",
			Data:      data,
			Status:    models.WebhookEventLogStatusReceived,
		})
	}
	if len(stocks) > 0 {
		r.log.Infow("emitted expiry alerts", "count", len(stocks))
	}
}

func (r *Runner) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.loop(runCtx, "payment_expiry", r.cfg.Sweep.PaymentExpiryInterval, r.expirePayments)
	if r.cfg.Sweep.PendingPollEnabled {
		r.loop(runCtx, "pending_poll", r.cfg.Sweep.PendingPollInterval, r.pollPendingPayments)
	}
	r.loop(runCtx, "inventory_expiry", r.cfg.Sweep.InventoryAlertInterval, r.emitExpiryAlerts)

	r.log.Infow("sweep runner started",
		"payment_expiry", r.cfg.Sweep.PaymentExpiryInterval,
		"pending_poll_enabled", r.cfg.Sweep.PendingPollEnabled,
		"inventory_expiry", r.cfg.Sweep.InventoryAlertInterval)
	return nil
}

func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweep runner shutdown timed out: %w", ctx.Err())
	}
}

func registerRunner(lc fx.Lifecycle, r *Runner) {
	lc.Append(fx.Hook{OnStart: r.Start, OnStop: r.Stop})
}

var Module = fx.Options(
	fx.Provide(NewRunner),
	fx.Invoke(registerRunner),
)
