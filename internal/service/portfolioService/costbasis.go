package portfolioService

import (
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
)

// AggregateCostBasis derives per-asset cost basis aggregates from the
// transaction ledger. Buys contribute to quantity bought, total cost and
// the first buy date; sells to quantity sold and proceeds. Pure and
// deterministic: recomputed from the full ledger on every query, nothing
// is cached.
func AggregateCostBasis(txs []model.Transaction) map[int64]model.CostBasisAggregate {
	aggs := make(map[int64]model.CostBasisAggregate)

	for _, tx := range txs {
		agg := aggs[tx.AssetID]
		agg.AssetID = tx.AssetID

		switch tx.Type {
		case model.TxBuy:
			agg.TotalQtyBought = agg.TotalQtyBought.Add(tx.Quantity)
			agg.TotalCost = agg.TotalCost.Add(transactionValue(tx))
			if agg.FirstBuyDate == nil || tx.Date.Before(*agg.FirstBuyDate) {
				date := tx.Date
				agg.FirstBuyDate = &date
			}
		case model.TxSell:
			agg.TotalQtySold = agg.TotalQtySold.Add(tx.Quantity)
			agg.TotalProceeds = agg.TotalProceeds.Add(transactionValue(tx))
		}

		aggs[tx.AssetID] = agg
	}

	for assetID, agg := range aggs {
		if agg.TotalQtyBought.IsPositive() {
			avg := agg.TotalCost.Div(agg.TotalQtyBought)
			agg.AvgCostPerUnit = &avg
			aggs[assetID] = agg
		}
	}

	return aggs
}

func transactionValue(tx model.Transaction) decimal.Decimal {
	if tx.TotalValue != nil {
		return *tx.TotalValue
	}
	if tx.PricePerUnit != nil {
		return tx.Quantity.Mul(*tx.PricePerUnit)
	}
	return decimal.Zero
}
