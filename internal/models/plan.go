package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a product offering: a monthly price applied over a fixed
// duration in months.
type Plan struct {
	ID        int64           `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	Duration  int             `db:"duration" json:"duration"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
