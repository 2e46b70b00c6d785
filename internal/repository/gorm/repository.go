package gormrepository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signaltracker/internal/models"
	"signaltracker/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertSignal(ctx context.Context, item *models.Signal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveSignal(ctx context.Context, item *models.Signal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetSignalByID(ctx context.Context, id uint64) (*models.Signal, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Signal
	err := s.db.WithContext(ctx).Model(&models.Signal{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSignals(ctx context.Context, params repository.ListSignalsParams) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applySignalFilters(s.db.WithContext(ctx).Model(&models.Signal{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Signal
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSignals(ctx context.Context, params repository.ListSignalsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	query := applySignalFilters(s.db.WithContext(ctx).Model(&models.Signal{}), params)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListPendingSignals(ctx context.Context) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Signal
	if err := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("status = ?", models.StatusPending).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) PerformanceSummary(ctx context.Context) (repository.PerformanceSummary, error) {
	out := repository.PerformanceSummary{}
	if s == nil || s.db == nil {
		return out, nil
	}
	var row struct {
		Total       int64
		Pending     int64
		HitTarget   int64
		HitStopLoss int64
		Expired     int64
		AvgPerf     *float64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Select(`
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = ?) AS pending,
			COUNT(*) FILTER (WHERE status = ?) AS hit_target,
			COUNT(*) FILTER (WHERE status = ?) AS hit_stop_loss,
			COUNT(*) FILTER (WHERE status = ?) AS expired,
			AVG(performance_pct) AS avg_perf
		`, models.StatusPending, models.StatusHitTarget, models.StatusHitStopLoss, models.StatusExpired).
		Scan(&row).Error
	if err != nil {
		return out, err
	}
	out.Total = row.Total
	out.Pending = row.Pending
	out.HitTarget = row.HitTarget
	out.HitStopLoss = row.HitStopLoss
	out.Expired = row.Expired
	if row.AvgPerf != nil {
		out.AvgPerformancePct = *row.AvgPerf
	}
	closed := row.HitTarget + row.HitStopLoss
	if closed > 0 {
		out.WinRatePct = float64(row.HitTarget) / float64(closed) * 100
	}
	return out, nil
}

func (s *Store) UpsertCoin(ctx context.Context, item *models.Coin) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Symbol) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"coingecko_id",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListCoins(ctx context.Context) ([]models.Coin, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Coin
	if err := s.db.WithContext(ctx).
		Model(&models.Coin{}).
		Order("symbol asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func applySignalFilters(query *gorm.DB, params repository.ListSignalsParams) *gorm.DB {
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.ToUpper(strings.TrimSpace(*params.Status)))
	}
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.ToUpper(strings.TrimSpace(*params.Symbol)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
