package portfolioService

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func buyTx(assetID int64, qty, price string, date time.Time) model.Transaction {
	return model.Transaction{AssetID: assetID, Type: model.TxBuy, Quantity: dec(qty), PricePerUnit: decPtr(price), Date: date}
}

func sellTx(assetID int64, qty, price string, date time.Time) model.Transaction {
	return model.Transaction{AssetID: assetID, Type: model.TxSell, Quantity: dec(qty), PricePerUnit: decPtr(price), Date: date}
}

func TestAggregateCostBasis(t *testing.T) {
	day1 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("buys accumulate cost and quantity", func(t *testing.T) {
		aggs := AggregateCostBasis([]model.Transaction{
			buyTx(1, "10", "100", day1),
			buyTx(1, "10", "200", day2),
		})

		agg, ok := aggs[1]
		require.True(t, ok)
		assert.True(t, agg.TotalQtyBought.Equal(dec("20")))
		assert.True(t, agg.TotalCost.Equal(dec("3000")))
		require.NotNil(t, agg.AvgCostPerUnit)
		assert.True(t, agg.AvgCostPerUnit.Equal(dec("150")))
	})

	t.Run("first buy date is the earliest buy regardless of order", func(t *testing.T) {
		aggs := AggregateCostBasis([]model.Transaction{
			buyTx(1, "5", "100", day2),
			buyTx(1, "5", "100", day1),
		})

		require.NotNil(t, aggs[1].FirstBuyDate)
		assert.Equal(t, day1, *aggs[1].FirstBuyDate)
	})

	t.Run("sells accumulate proceeds without affecting avg cost", func(t *testing.T) {
		aggs := AggregateCostBasis([]model.Transaction{
			buyTx(1, "10", "100", day1),
			sellTx(1, "4", "150", day2),
		})

		agg := aggs[1]
		assert.True(t, agg.TotalQtySold.Equal(dec("4")))
		assert.True(t, agg.TotalProceeds.Equal(dec("600")))
		require.NotNil(t, agg.AvgCostPerUnit)
		assert.True(t, agg.AvgCostPerUnit.Equal(dec("100")))
	})

	t.Run("sells only leaves avg cost nil", func(t *testing.T) {
		aggs := AggregateCostBasis([]model.Transaction{
			sellTx(1, "3", "50", day1),
		})

		agg := aggs[1]
		assert.Nil(t, agg.AvgCostPerUnit)
		assert.Nil(t, agg.FirstBuyDate)
		assert.True(t, agg.TotalProceeds.Equal(dec("150")))
	})

	t.Run("transfers and cash flows are ignored", func(t *testing.T) {
		aggs := AggregateCostBasis([]model.Transaction{
			{AssetID: 1, Type: model.TxTransferIn, Quantity: dec("10"), Date: day1},
			{AssetID: 1, Type: model.TxDeposit, Quantity: dec("5"), Date: day1},
			{AssetID: 1, Type: model.TxWithdrawal, Quantity: dec("2"), Date: day2},
		})

		agg := aggs[1]
		assert.True(t, agg.TotalQtyBought.IsZero())
		assert.True(t, agg.TotalQtySold.IsZero())
		assert.Nil(t, agg.AvgCostPerUnit)
	})

	t.Run("assets are aggregated independently", func(t *testing.T) {
		aggs := AggregateCostBasis([]model.Transaction{
			buyTx(1, "10", "100", day1),
			buyTx(2, "1", "50000", day1),
		})

		assert.Len(t, aggs, 2)
		assert.True(t, aggs[1].TotalCost.Equal(dec("1000")))
		assert.True(t, aggs[2].TotalCost.Equal(dec("50000")))
	})
}

func TestTransactionValue(t *testing.T) {
	t.Run("prefers stored total value", func(t *testing.T) {
		tx := model.Transaction{Quantity: dec("10"), PricePerUnit: decPtr("100"), TotalValue: decPtr("990")}
		assert.True(t, transactionValue(tx).Equal(dec("990")))
	})

	t.Run("falls back to quantity times price", func(t *testing.T) {
		tx := model.Transaction{Quantity: dec("10"), PricePerUnit: decPtr("100")}
		assert.True(t, transactionValue(tx).Equal(dec("1000")))
	})

	t.Run("zero when no price information", func(t *testing.T) {
		tx := model.Transaction{Quantity: dec("10")}
		assert.True(t, transactionValue(tx).IsZero())
	})
}
