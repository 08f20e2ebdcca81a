package portfolioService

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
)

func posValue(symbol, assetType, custodian, value string) model.PositionValue {
	return model.PositionValue{
		Symbol:        symbol,
		AssetType:     assetType,
		CustodianName: custodian,
		Value:         dec(value),
	}
}

func TestBuildPortfolioSummary(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("groups by type custodian and symbol", func(t *testing.T) {
		summary := BuildPortfolioSummary([]model.PositionValue{
			posValue("ETH", "crypto", "metamask", "3000"),
			posValue("BTC", "crypto", "ledger", "5000"),
			posValue("VWCE", "etf", "broker", "2000"),
		}, now)

		assert.True(t, summary.TotalValue.Equal(dec("10000")))

		require.Len(t, summary.ByAssetType, 2)
		assert.Equal(t, "crypto", summary.ByAssetType[0].Name)
		assert.True(t, summary.ByAssetType[0].Value.Equal(dec("8000")))
		assert.True(t, summary.ByAssetType[0].Percentage.Equal(dec("80")))
		assert.Equal(t, "etf", summary.ByAssetType[1].Name)
		assert.True(t, summary.ByAssetType[1].Percentage.Equal(dec("20")))

		require.Len(t, summary.ByCustodian, 3)
		assert.Equal(t, "ledger", summary.ByCustodian[0].Name)

		require.Len(t, summary.TopHoldings, 3)
		assert.Equal(t, "BTC", summary.TopHoldings[0].Name)
	})

	t.Run("same asset across custodians merges into one holding", func(t *testing.T) {
		summary := BuildPortfolioSummary([]model.PositionValue{
			posValue("ETH", "crypto", "metamask", "3000"),
			posValue("ETH", "crypto", "ledger", "1000"),
		}, now)

		require.Len(t, summary.TopHoldings, 1)
		assert.True(t, summary.TopHoldings[0].Value.Equal(dec("4000")))
		assert.Len(t, summary.ByCustodian, 2)
	})

	t.Run("percentages are rounded to one decimal", func(t *testing.T) {
		summary := BuildPortfolioSummary([]model.PositionValue{
			posValue("A", "crypto", "x", "1"),
			posValue("B", "crypto", "x", "2"),
		}, now)

		// 1/3 and 2/3
		assert.True(t, summary.TopHoldings[0].Percentage.Equal(dec("66.7")))
		assert.True(t, summary.TopHoldings[1].Percentage.Equal(dec("33.3")))
	})

	t.Run("top holdings capped at ten", func(t *testing.T) {
		values := make([]model.PositionValue, 0, 12)
		for i := 0; i < 12; i++ {
			values = append(values, posValue(fmt.Sprintf("A%02d", i), "crypto", "x", fmt.Sprintf("%d", 100+i)))
		}

		summary := BuildPortfolioSummary(values, now)

		require.Len(t, summary.TopHoldings, 10)
		assert.Equal(t, "A11", summary.TopHoldings[0].Name)
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		summary := BuildPortfolioSummary([]model.PositionValue{
			posValue("ZZZ", "crypto", "x", "100"),
			posValue("AAA", "crypto", "x", "100"),
		}, now)

		assert.Equal(t, "AAA", summary.TopHoldings[0].Name)
		assert.Equal(t, "ZZZ", summary.TopHoldings[1].Name)
	})

	t.Run("empty portfolio has zero total and no slices", func(t *testing.T) {
		summary := BuildPortfolioSummary(nil, now)

		assert.True(t, summary.TotalValue.IsZero())
		assert.Empty(t, summary.ByAssetType)
		assert.Empty(t, summary.ByCustodian)
		assert.Empty(t, summary.TopHoldings)
		assert.Equal(t, now, summary.LastUpdated)
	})
}
