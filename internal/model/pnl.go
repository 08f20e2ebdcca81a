package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostBasisAggregate is derived from the full transaction ledger of one
// asset. Never persisted, recomputed on every query.
type CostBasisAggregate struct {
	AssetID        int64
	TotalQtyBought decimal.Decimal
	TotalCost      decimal.Decimal
	TotalQtySold   decimal.Decimal
	TotalProceeds  decimal.Decimal
	AvgCostPerUnit *decimal.Decimal // nil when nothing was bought
	FirstBuyDate   *time.Time       // nil when nothing was bought
}

type CostBasis struct {
	TotalCost      decimal.Decimal
	AvgCostPerUnit decimal.Decimal
	TotalQtyBought decimal.Decimal
}

type UnrealizedPnl struct {
	Amount  decimal.Decimal
	Percent *decimal.Decimal // nil when cost basis for the holding is not positive
}

type RealizedPnl struct {
	Amount        decimal.Decimal
	TotalQtySold  decimal.Decimal
	TotalProceeds decimal.Decimal
}

type Performance struct {
	Apy          *decimal.Decimal
	HoldingDays  *int
	FirstBuyDate *time.Time
}

type PnlPosition struct {
	AssetID         int64
	Symbol          string
	AssetName       string
	AssetType       string
	CurrentQuantity decimal.Decimal
	CurrentPrice    decimal.Decimal
	CurrentValue    decimal.Decimal
	HasCostBasis    bool
	CostBasis       *CostBasis
	Unrealized      *UnrealizedPnl
	Realized        *RealizedPnl
	Performance     *Performance
}

type PnlSummary struct {
	TotalCostBasis            decimal.Decimal
	TotalCurrentValue         decimal.Decimal
	TotalUnrealizedPnl        decimal.Decimal
	TotalUnrealizedPnlPct     *decimal.Decimal
	TotalRealizedPnl          decimal.Decimal
	PositionsWithCostBasis    int
	PositionsWithoutCostBasis int
}

type PnlReport struct {
	Summary     PnlSummary
	Positions   []PnlPosition
	GeneratedAt time.Time
}
