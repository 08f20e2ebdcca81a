package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceItem is the uniform shape every external balance entry is
// flattened to before asset resolution, regardless of whether it came in
// as a plain token balance, an app token or a nested contract position.
type BalanceItem struct {
	Address string
	Symbol  string
	Balance decimal.Decimal
	Price   decimal.Decimal
	Chain   string
}

type SyncSummary struct {
	WalletsProcessed int
	PositionsUpdated int
	PositionsZeroed  int
	PricesUpdated    int
	Errors           []string
}

type SyncResult struct {
	Success  bool
	SyncedAt time.Time
	Summary  SyncSummary
}

type PriceSyncSummary struct {
	AssetsProcessed int
	PricesUpdated   int
	Errors          []string
}

type PriceSyncResult struct {
	Success  bool
	SyncedAt time.Time
	Summary  PriceSyncSummary
}
