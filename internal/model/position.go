package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the per-asset quantity aggregated across custodians together
// with the latest known price.
type Holding struct {
	AssetID   int64
	Symbol    string
	AssetName string
	AssetType string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}

// PositionValue is one positive-quantity position row valued at the
// latest price, the input of the portfolio summary breakdowns.
type PositionValue struct {
	Symbol        string
	AssetType     string
	CustodianName string
	Value         decimal.Decimal
}

type Position struct {
	ID          int64
	AssetID     int64
	CustodianID int64
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
