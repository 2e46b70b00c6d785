package models

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"

	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"

	TimeframeShort = "SHORT"
	TimeframeMid   = "MID"
	TimeframeLong  = "LONG"

	StatusPending     = "PENDING"
	StatusHitTarget   = "HIT_TARGET"
	StatusHitStopLoss = "HIT_STOPLOSS"
	StatusExpired     = "EXPIRED"
)

// Signal is one extracted trade idea. Fields the extractor could not
// recover from the raw text stay nil.
type Signal struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Source  string `gorm:"type:varchar(50);not null;index"`
	RawText string `gorm:"type:text;not null"`

	Symbol    *string          `gorm:"type:varchar(20);index"`
	Direction *string          `gorm:"type:varchar(10)"`
	Entry     *decimal.Decimal `gorm:"type:numeric(30,10)"`
	Targets   datatypes.JSON   `gorm:"type:jsonb"`
	StopLoss  *decimal.Decimal `gorm:"type:numeric(30,10)"`

	RiskLevel string `gorm:"type:varchar(10);not null;default:MEDIUM"`
	Timeframe string `gorm:"type:varchar(10);not null;default:MID"`

	Status         string           `gorm:"type:varchar(20);not null;default:PENDING;index"`
	HitTPIndex     *int             `gorm:""`
	ExitPrice      *decimal.Decimal `gorm:"type:numeric(30,10)"`
	PerformancePct *decimal.Decimal `gorm:"type:numeric(12,4)"`

	EvaluatedAt *time.Time `gorm:"type:timestamptz"`
	ClosedAt    *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime;index"`
	ExpiresAt   time.Time  `gorm:"type:timestamptz;not null;index"`
}

func (Signal) TableName() string {
	return "signals"
}

// Terminal reports whether the signal has reached a final status and must
// not be evaluated again.
func (s *Signal) Terminal() bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case StatusHitTarget, StatusHitStopLoss, StatusExpired:
		return true
	}
	return false
}

// TargetMap decodes the jsonb targets column into index→price. Indexes
// that fail to parse are skipped.
func (s *Signal) TargetMap() map[int]decimal.Decimal {
	out := map[int]decimal.Decimal{}
	if s == nil || len(s.Targets) == 0 {
		return out
	}
	raw := map[string]string{}
	if err := json.Unmarshal(s.Targets, &raw); err != nil {
		return out
	}
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil || idx <= 0 {
			continue
		}
		price, err := decimal.NewFromString(v)
		if err != nil {
			continue
		}
		out[idx] = price
	}
	return out
}

// SetTargets encodes index→price into the jsonb targets column.
func (s *Signal) SetTargets(targets map[int]decimal.Decimal) error {
	if s == nil {
		return nil
	}
	if len(targets) == 0 {
		s.Targets = nil
		return nil
	}
	raw := make(map[string]string, len(targets))
	for idx, price := range targets {
		raw[strconv.Itoa(idx)] = price.String()
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	s.Targets = datatypes.JSON(buf)
	return nil
}

// SortedTargetIndexes returns the target indexes in ascending order.
func (s *Signal) SortedTargetIndexes() []int {
	targets := s.TargetMap()
	out := make([]int, 0, len(targets))
	for idx := range targets {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
