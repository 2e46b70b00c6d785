package repository

import (
	"context"
	"time"

	"signaltracker/internal/models"
)

type Repository interface {
	// Signals.
	InsertSignal(ctx context.Context, item *models.Signal) error
	SaveSignal(ctx context.Context, item *models.Signal) error
	GetSignalByID(ctx context.Context, id uint64) (*models.Signal, error)
	ListSignals(ctx context.Context, params ListSignalsParams) ([]models.Signal, error)
	CountSignals(ctx context.Context, params ListSignalsParams) (int64, error)
	ListPendingSignals(ctx context.Context) ([]models.Signal, error)
	PerformanceSummary(ctx context.Context) (PerformanceSummary, error)

	// Known coins.
	UpsertCoin(ctx context.Context, item *models.Coin) error
	ListCoins(ctx context.Context) ([]models.Coin, error)
}

type ListSignalsParams struct {
	Limit   int
	Offset  int
	Status  *string
	Symbol  *string
	Since   *time.Time
	OrderBy string
	Asc     *bool
}

type PerformanceSummary struct {
	Total             int64
	Pending           int64
	HitTarget         int64
	HitStopLoss       int64
	Expired           int64
	AvgPerformancePct float64
	WinRatePct        float64
}
