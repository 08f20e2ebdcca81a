package syncService

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
)

func testAssets() []model.Asset {
	return []model.Asset{
		{ID: 1, Symbol: "ETH", PriceSource: model.PriceSourceZapper, ApiIdentifier: ""},
		{ID: 2, Symbol: "USDC", PriceSource: model.PriceSourceZapper, ApiIdentifier: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{ID: 3, Symbol: "BTC", PriceSource: model.PriceSourceZapper, ApiIdentifier: ""},
	}
}

func TestAssetLookupResolve(t *testing.T) {
	lookup := buildAssetLookup(testAssets())

	t.Run("matches by address case insensitively", func(t *testing.T) {
		asset, ok := lookup.Resolve(model.BalanceItem{
			Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			Symbol:  "SOMETHING_ELSE",
		})

		require.True(t, ok)
		assert.Equal(t, int64(2), asset.ID)
	})

	t.Run("zero address matches by symbol only", func(t *testing.T) {
		asset, ok := lookup.Resolve(model.BalanceItem{
			Address: zeroAddress,
			Symbol:  "eth",
		})

		require.True(t, ok)
		assert.Equal(t, int64(1), asset.ID)
	})

	t.Run("zero address with unknown symbol misses", func(t *testing.T) {
		_, ok := lookup.Resolve(model.BalanceItem{
			Address: zeroAddress,
			Symbol:  "MATIC",
		})

		assert.False(t, ok)
	})

	t.Run("unknown address falls back to symbol", func(t *testing.T) {
		asset, ok := lookup.Resolve(model.BalanceItem{
			Address: "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
			Symbol:  "USDC",
		})

		require.True(t, ok)
		assert.Equal(t, int64(2), asset.ID)
	})

	t.Run("unknown address and symbol misses", func(t *testing.T) {
		_, ok := lookup.Resolve(model.BalanceItem{
			Address: "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
			Symbol:  "SHITCOIN",
			Balance: decimal.NewFromInt(1),
		})

		assert.False(t, ok)
	})

	t.Run("empty address misses", func(t *testing.T) {
		_, ok := lookup.Resolve(model.BalanceItem{Symbol: "ETH"})

		assert.False(t, ok)
	})
}

func TestIsBtcWallet(t *testing.T) {
	assert.True(t, isBtcWallet("bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"))
	assert.False(t, isBtcWallet("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"))
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "0xA0b8...eB48", truncateAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"))
	assert.Equal(t, "short", truncateAddress("short"))
}
