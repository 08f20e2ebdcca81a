package portfolioService

import (
	"math"
	"time"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
)

const daysPerYear = 365

var hundred = decimal.NewFromInt(100)

// BuildPnlReport evaluates every holding against its cost basis
// aggregate and rolls the positions up into the report summary.
func BuildPnlReport(holdings []model.Holding, aggs map[int64]model.CostBasisAggregate, now time.Time) model.PnlReport {
	positions := make([]model.PnlPosition, 0, len(holdings))
	for _, holding := range holdings {
		var agg *model.CostBasisAggregate
		if a, ok := aggs[holding.AssetID]; ok {
			agg = &a
		}
		positions = append(positions, BuildPnlPosition(holding, agg, now))
	}

	return model.PnlReport{
		Summary:     buildPnlSummary(positions),
		Positions:   positions,
		GeneratedAt: now,
	}
}

// BuildPnlPosition computes unrealized and realized P&L plus annualized
// performance for one holding. Realized P&L applies the current average
// cost retroactively to all historically sold units; later buys shift
// the reported figure. That is a deliberate simplification of strict
// moving-average accounting.
func BuildPnlPosition(holding model.Holding, agg *model.CostBasisAggregate, now time.Time) model.PnlPosition {
	pos := model.PnlPosition{
		AssetID:         holding.AssetID,
		Symbol:          holding.Symbol,
		AssetName:       holding.AssetName,
		AssetType:       holding.AssetType,
		CurrentQuantity: holding.Quantity,
		CurrentPrice:    holding.Price,
		CurrentValue:    holding.Quantity.Mul(holding.Price),
	}

	if agg == nil || !agg.TotalQtyBought.IsPositive() {
		return pos
	}

	pos.HasCostBasis = true
	avgCost := *agg.AvgCostPerUnit
	costBasisForHolding := holding.Quantity.Mul(avgCost)

	pos.CostBasis = &model.CostBasis{
		TotalCost:      agg.TotalCost,
		AvgCostPerUnit: avgCost,
		TotalQtyBought: agg.TotalQtyBought,
	}

	pos.Unrealized = calculateUnrealized(pos.CurrentValue, costBasisForHolding)
	pos.Realized = calculateRealized(agg.TotalQtySold, agg.TotalProceeds, avgCost)
	pos.Performance = calculatePerformance(pos.CurrentValue, costBasisForHolding, agg.FirstBuyDate, now)

	return pos
}

func calculateUnrealized(currentValue, costBasisForHolding decimal.Decimal) *model.UnrealizedPnl {
	unrealized := &model.UnrealizedPnl{
		Amount: currentValue.Sub(costBasisForHolding),
	}

	if costBasisForHolding.IsPositive() {
		percent := unrealized.Amount.Div(costBasisForHolding).Mul(hundred).Round(2)
		unrealized.Percent = &percent
	}

	return unrealized
}

func calculateRealized(totalQtySold, totalProceeds, avgCost decimal.Decimal) *model.RealizedPnl {
	costOfSoldUnits := totalQtySold.Mul(avgCost)
	return &model.RealizedPnl{
		Amount:        totalProceeds.Sub(costOfSoldUnits),
		TotalQtySold:  totalQtySold,
		TotalProceeds: totalProceeds,
	}
}

func calculatePerformance(currentValue, costBasisForHolding decimal.Decimal, firstBuyDate *time.Time, now time.Time) *model.Performance {
	perf := &model.Performance{}

	if firstBuyDate == nil || !costBasisForHolding.IsPositive() {
		return perf
	}

	holdingDays := int(math.Floor(now.Sub(*firstBuyDate).Hours() / 24))
	perf.HoldingDays = &holdingDays
	perf.FirstBuyDate = firstBuyDate

	if holdingDays >= 1 && currentValue.IsPositive() {
		// compounded to a 365-day basis; needs a fractional exponent, so
		// this is the one place the math leaves decimals
		ratio, _ := currentValue.Div(costBasisForHolding).Float64()
		apy := decimal.NewFromFloat((math.Pow(ratio, daysPerYear/float64(holdingDays)) - 1) * 100).Round(2)
		perf.Apy = &apy
	}

	return perf
}

func buildPnlSummary(positions []model.PnlPosition) model.PnlSummary {
	summary := model.PnlSummary{}

	totalCostBasis := decimal.Zero
	totalCurrentValue := decimal.Zero
	totalUnrealized := decimal.Zero
	totalRealized := decimal.Zero

	for _, pos := range positions {
		totalCurrentValue = totalCurrentValue.Add(pos.CurrentValue)

		if !pos.HasCostBasis {
			summary.PositionsWithoutCostBasis++
			continue
		}

		totalCostBasis = totalCostBasis.Add(pos.CurrentQuantity.Mul(pos.CostBasis.AvgCostPerUnit))
		totalUnrealized = totalUnrealized.Add(pos.Unrealized.Amount)
		totalRealized = totalRealized.Add(pos.Realized.Amount)
		summary.PositionsWithCostBasis++
	}

	summary.TotalCostBasis = totalCostBasis.Round(2)
	summary.TotalCurrentValue = totalCurrentValue.Round(2)
	summary.TotalUnrealizedPnl = totalUnrealized.Round(2)
	summary.TotalRealizedPnl = totalRealized.Round(2)

	if totalCostBasis.IsPositive() {
		pct := totalUnrealized.Div(totalCostBasis).Mul(hundred).Round(2)
		summary.TotalUnrealizedPnlPct = &pct
	}

	return summary
}
