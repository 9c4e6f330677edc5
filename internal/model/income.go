package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income is a single income record.
type Income struct {
	Date   time.Time
	ID     string
	Source string
	Notes  string
	Amount decimal.Decimal
}
