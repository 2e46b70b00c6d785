package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreationEvent announces a newly ingested signal.
type CreationEvent struct {
	SignalID  uint64     `json:"signal_id"`
	Source    string     `json:"source"`
	Symbol    *string    `json:"symbol,omitempty"`
	Direction *string    `json:"direction,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// OutcomeEvent announces a terminal status transition. Emitted exactly
// once per transition, before the signal is persisted.
type OutcomeEvent struct {
	SignalID       uint64           `json:"signal_id"`
	Symbol         string           `json:"symbol,omitempty"`
	PreviousStatus string           `json:"previous_status"`
	NewStatus      string           `json:"new_status"`
	HitTPIndex     *int             `json:"hit_tp_index,omitempty"`
	ExitPrice      *decimal.Decimal `json:"exit_price,omitempty"`
	PerformancePct *decimal.Decimal `json:"performance_pct,omitempty"`
	At             time.Time        `json:"at"`
}

type Notifier interface {
	SignalCreated(ctx context.Context, event CreationEvent) error
	SignalClosed(ctx context.Context, event OutcomeEvent) error
}

// LogNotifier writes events to the service log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) SignalCreated(_ context.Context, event CreationEvent) error {
	if n == nil || n.Logger == nil {
		return nil
	}
	fields := []zap.Field{
		zap.Uint64("signal_id", event.SignalID),
		zap.String("source", event.Source),
	}
	if event.Symbol != nil {
		fields = append(fields, zap.String("symbol", *event.Symbol))
	}
	if event.Direction != nil {
		fields = append(fields, zap.String("direction", *event.Direction))
	}
	n.Logger.Info("signal created", fields...)
	return nil
}

func (n *LogNotifier) SignalClosed(_ context.Context, event OutcomeEvent) error {
	if n == nil || n.Logger == nil {
		return nil
	}
	fields := []zap.Field{
		zap.Uint64("signal_id", event.SignalID),
		zap.String("symbol", event.Symbol),
		zap.String("previous_status", event.PreviousStatus),
		zap.String("new_status", event.NewStatus),
	}
	if event.HitTPIndex != nil {
		fields = append(fields, zap.Int("hit_tp_index", *event.HitTPIndex))
	}
	if event.ExitPrice != nil {
		fields = append(fields, zap.String("exit_price", event.ExitPrice.String()))
	}
	if event.PerformancePct != nil {
		fields = append(fields, zap.String("performance_pct", event.PerformancePct.String()))
	}
	n.Logger.Info("signal closed", fields...)
	return nil
}

// Fanout delivers each event to every notifier, returning the first
// error after all deliveries were attempted.
type Fanout []Notifier

func (f Fanout) SignalCreated(ctx context.Context, event CreationEvent) error {
	var firstErr error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.SignalCreated(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f Fanout) SignalClosed(ctx context.Context, event OutcomeEvent) error {
	var firstErr error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.SignalClosed(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
