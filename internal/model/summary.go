package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SummarySlice struct {
	Name       string
	Value      decimal.Decimal
	Percentage decimal.Decimal // of total portfolio value, 1 decimal
}

type PortfolioSummary struct {
	TotalValue  decimal.Decimal
	ByAssetType []SummarySlice
	ByCustodian []SummarySlice
	TopHoldings []SummarySlice
	LastUpdated time.Time
}
