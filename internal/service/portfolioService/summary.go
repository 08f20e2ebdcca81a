package portfolioService

import (
	"sort"
	"time"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
)

const topHoldingsLimit = 10

// BuildPortfolioSummary groups position values by asset type, custodian
// and symbol, each slice carrying its share of the total portfolio value
// rounded to one decimal (0 when the total is 0).
func BuildPortfolioSummary(values []model.PositionValue, now time.Time) model.PortfolioSummary {
	total := decimal.Zero
	for _, value := range values {
		total = total.Add(value.Value)
	}

	byType := groupValues(values, func(v model.PositionValue) string { return v.AssetType }, false)
	byCustodian := groupValues(values, func(v model.PositionValue) string { return v.CustodianName }, true)
	topHoldings := groupValues(values, func(v model.PositionValue) string { return v.Symbol }, true)
	if len(topHoldings) > topHoldingsLimit {
		topHoldings = topHoldings[:topHoldingsLimit]
	}

	return model.PortfolioSummary{
		TotalValue:  total,
		ByAssetType: fillPercentages(byType, total),
		ByCustodian: fillPercentages(byCustodian, total),
		TopHoldings: fillPercentages(topHoldings, total),
		LastUpdated: now,
	}
}

func groupValues(values []model.PositionValue, keyFn func(model.PositionValue) string, skipZero bool) []model.SummarySlice {
	sums := make(map[string]decimal.Decimal)
	for _, value := range values {
		key := keyFn(value)
		sums[key] = sums[key].Add(value.Value)
	}

	slices := make([]model.SummarySlice, 0, len(sums))
	for name, sum := range sums {
		if skipZero && !sum.IsPositive() {
			continue
		}
		slices = append(slices, model.SummarySlice{Name: name, Value: sum})
	}

	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Value.Equal(slices[j].Value) {
			return slices[i].Value.GreaterThan(slices[j].Value)
		}
		return slices[i].Name < slices[j].Name
	})

	return slices
}

func fillPercentages(slices []model.SummarySlice, total decimal.Decimal) []model.SummarySlice {
	for i := range slices {
		if total.IsPositive() {
			slices[i].Percentage = slices[i].Value.Div(total).Mul(hundred).Round(1)
		} else {
			slices[i].Percentage = decimal.Zero
		}
	}
	return slices
}
