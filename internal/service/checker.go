package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"signaltracker/internal/evaluate"
	"signaltracker/internal/models"
	"signaltracker/internal/notify"
	"signaltracker/internal/price"
	"signaltracker/internal/repository"
)

// PerformanceChecker drives one evaluation pass over all pending
// signals. A fetch failure for one symbol defers that signal to the next
// tick; nothing a single signal does can stop the tick.
type PerformanceChecker struct {
	Repo     repository.Repository
	Prices   *price.Service
	Notifier notify.Notifier
	Logger   *zap.Logger
}

func (c *PerformanceChecker) RunOnce(ctx context.Context) error {
	if c == nil || c.Repo == nil || c.Prices == nil {
		return nil
	}
	items, err := c.Repo.ListPendingSignals(ctx)
	if err != nil || len(items) == 0 {
		return err
	}
	for _, sig := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.checkOne(ctx, sig); err != nil && c.Logger != nil {
			c.Logger.Warn("signal check failed",
				zap.Uint64("signal_id", sig.ID), zap.Error(err))
		}
	}
	return nil
}

func (c *PerformanceChecker) checkOne(ctx context.Context, sig models.Signal) error {
	now := time.Now().UTC()

	var updated models.Signal
	if sig.Symbol == nil || strings.TrimSpace(*sig.Symbol) == "" {
		// No symbol means no price; the signal can only lapse.
		updated = evaluate.ExpireOnly(sig, now)
	} else {
		quote, err := c.Prices.CurrentPrice(ctx, *sig.Symbol)
		if err != nil {
			var fetchErr *price.FetchError
			if errors.As(err, &fetchErr) {
				if c.Logger != nil {
					c.Logger.Warn("price unavailable, signal deferred",
						zap.Uint64("signal_id", sig.ID),
						zap.String("symbol", *sig.Symbol),
						zap.Error(err))
				}
				return nil
			}
			return err
		}
		updated = evaluate.Evaluate(sig, quote.Price, now)
	}

	if updated.Status == sig.Status {
		return nil
	}

	// Event first, then persistence: the transition is emitted exactly
	// once per status change.
	if c.Notifier != nil {
		event := notify.OutcomeEvent{
			SignalID:       updated.ID,
			PreviousStatus: sig.Status,
			NewStatus:      updated.Status,
			HitTPIndex:     updated.HitTPIndex,
			ExitPrice:      updated.ExitPrice,
			PerformancePct: updated.PerformancePct,
			At:             now,
		}
		if updated.Symbol != nil {
			event.Symbol = *updated.Symbol
		}
		if err := c.Notifier.SignalClosed(ctx, event); err != nil && c.Logger != nil {
			c.Logger.Warn("outcome event delivery failed",
				zap.Uint64("signal_id", updated.ID), zap.Error(err))
		}
	}
	return c.Repo.SaveSignal(ctx, &updated)
}
