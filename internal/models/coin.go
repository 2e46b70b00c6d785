package models

import "time"

// Coin is one known ticker the extractor and the CoinGecko provider can
// resolve by bare symbol.
type Coin struct {
	Symbol      string    `gorm:"type:varchar(20);primaryKey"`
	Name        string    `gorm:"type:varchar(100);not null"`
	CoingeckoID string    `gorm:"type:varchar(100);not null;index"`
	CreatedAt   time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Coin) TableName() string {
	return "coins"
}
