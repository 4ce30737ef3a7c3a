package models

import (
	"time"
)

// CurrencyRateGorm represents the currency_rates table with GORM tags.
// Rates are quoted against the base currency (AED) and snapshotted onto
// quotes at creation time.
type CurrencyRateGorm struct {
	Code      string    `gorm:"primaryKey;column:code;size:3" json:"code" example:"USD"`
	Rate      float64   `gorm:"column:rate;not null" json:"rate" example:"3.6725"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for CurrencyRateGorm
func (CurrencyRateGorm) TableName() string {
	return "currency_rates"
}

// CurrencyRateRequest upserts a currency rate
type CurrencyRateRequest struct {
	Code string  `json:"code" binding:"required,len=3" example:"USD"`
	Rate float64 `json:"rate" binding:"required,gt=0" example:"3.6725"`
}
