package syncService

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/wealth_tracker_bot/config"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type posKey struct {
	assetID     int64
	custodianID int64
}

type fakeRepo struct {
	assets        []model.Asset
	custodians    []model.Custodian
	positions     map[posKey]decimal.Decimal
	prices        map[int64]decimal.Decimal
	priceSources  map[int64]string
	assetsErr     error
	custodiansErr error
	replaceErrFor map[int64]error // by assetID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		positions:     make(map[posKey]decimal.Decimal),
		prices:        make(map[int64]decimal.Decimal),
		priceSources:  make(map[int64]string),
		replaceErrFor: make(map[int64]error),
	}
}

func (r *fakeRepo) GetAssets(_ context.Context) ([]model.Asset, error) {
	return r.assets, r.assetsErr
}

func (r *fakeRepo) GetAssetsByPriceSource(_ context.Context, priceSource string) ([]model.Asset, error) {
	if r.assetsErr != nil {
		return nil, r.assetsErr
	}
	var out []model.Asset
	for _, a := range r.assets {
		if a.PriceSource == priceSource {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetCustodiansWithWallets(_ context.Context) ([]model.Custodian, error) {
	return r.custodians, r.custodiansErr
}

func (r *fakeRepo) GetProviderAssetIDs(_ context.Context, custodianID int64, priceSource string) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for key, qty := range r.positions {
		if key.custodianID != custodianID || !qty.IsPositive() {
			continue
		}
		for _, a := range r.assets {
			if a.ID == key.assetID && a.PriceSource == priceSource {
				ids[a.ID] = struct{}{}
			}
		}
	}
	return ids, nil
}

func (r *fakeRepo) ReplacePositionQuantity(_ context.Context, assetID, custodianID int64, quantity decimal.Decimal) error {
	if err := r.replaceErrFor[assetID]; err != nil {
		return err
	}
	r.positions[posKey{assetID, custodianID}] = quantity
	return nil
}

func (r *fakeRepo) UpsertDailyPrice(_ context.Context, assetID int64, price decimal.Decimal, source string) error {
	r.prices[assetID] = price
	r.priceSources[assetID] = source
	return nil
}

type fakeBalanceApi struct {
	tokenBalances map[string][]model.BalanceItem
	appBalances   map[string][]model.BalanceItem
	errFor        map[string]error
	chainIDCalls  map[string][]int
	appCalls      []string
}

func newFakeBalanceApi() *fakeBalanceApi {
	return &fakeBalanceApi{
		tokenBalances: make(map[string][]model.BalanceItem),
		appBalances:   make(map[string][]model.BalanceItem),
		errFor:        make(map[string]error),
		chainIDCalls:  make(map[string][]int),
	}
}

func (a *fakeBalanceApi) GetTokenBalances(_ context.Context, address string, chainIDs []int) ([]model.BalanceItem, error) {
	a.chainIDCalls[address] = chainIDs
	if err := a.errFor[address]; err != nil {
		return nil, err
	}
	return a.tokenBalances[address], nil
}

func (a *fakeBalanceApi) GetAppBalances(_ context.Context, address string) ([]model.BalanceItem, error) {
	a.appCalls = append(a.appCalls, address)
	return a.appBalances[address], nil
}

type fakePriceApi struct {
	quotes map[string]decimal.Decimal
	errFor map[string]error
}

func (a *fakePriceApi) GetQuote(_ context.Context, ticker string) (decimal.Decimal, error) {
	if err := a.errFor[ticker]; err != nil {
		return decimal.Zero, err
	}
	q, ok := a.quotes[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("no quote for %s", ticker)
	}
	return q, nil
}

type fakeCache struct {
	balances map[string][]model.BalanceItem
	quotes   map[string]decimal.Decimal
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		balances: make(map[string][]model.BalanceItem),
		quotes:   make(map[string]decimal.Decimal),
	}
}

func (c *fakeCache) GetBalances(_ context.Context, key string) ([]model.BalanceItem, error) {
	items, ok := c.balances[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return items, nil
}

func (c *fakeCache) SetBalances(_ context.Context, key string, items []model.BalanceItem) error {
	c.balances[key] = items
	return nil
}

func (c *fakeCache) GetQuote(_ context.Context, ticker string) (decimal.Decimal, error) {
	q, ok := c.quotes[ticker]
	if !ok {
		return decimal.Zero, errors.New("not found")
	}
	return q, nil
}

func (c *fakeCache) SetQuote(_ context.Context, ticker string, price decimal.Decimal) error {
	c.quotes[ticker] = price
	return nil
}

const (
	ethWallet = "0x1111111111111111111111111111111111111111"
	btcWallet = "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"
)

func newTestService(repo *fakeRepo, balanceApi *fakeBalanceApi, priceApi *fakePriceApi, cache *fakeCache) *SyncService {
	cfg := &config.Config{} // zero delays keep the tests fast
	return New(cfg, repo, balanceApi, priceApi, cache)
}

func TestSyncWallets(t *testing.T) {
	ctx := context.Background()

	assets := []model.Asset{
		{ID: 1, Symbol: "ETH", PriceSource: model.PriceSourceZapper},
		{ID: 2, Symbol: "USDC", PriceSource: model.PriceSourceZapper, ApiIdentifier: "0xusdc"},
		{ID: 3, Symbol: "BTC", PriceSource: model.PriceSourceZapper},
		{ID: 4, Symbol: "VWCE", PriceSource: model.PriceSourceYahoo, ApiIdentifier: "VWCE.DE"},
	}

	t.Run("replaces quantities and upserts prices", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{{ID: 10, Name: "metamask", WalletAddress: ethWallet}}

		api := newFakeBalanceApi()
		api.tokenBalances[ethWallet] = []model.BalanceItem{
			{Address: zeroAddress, Symbol: "ETH", Balance: dec("2.5"), Price: dec("1800")},
			{Address: "0xusdc", Symbol: "USDC", Balance: dec("1000"), Price: dec("1")},
		}

		svc := newTestService(repo, api, &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.True(t, result.Success)
		assert.Empty(t, result.Summary.Errors)
		assert.Equal(t, 1, result.Summary.WalletsProcessed)
		assert.Equal(t, 2, result.Summary.PositionsUpdated)
		assert.Equal(t, 2, result.Summary.PricesUpdated)
		assert.True(t, repo.positions[posKey{1, 10}].Equal(dec("2.5")))
		assert.True(t, repo.positions[posKey{2, 10}].Equal(dec("1000")))
		assert.True(t, repo.prices[1].Equal(dec("1800")))
		assert.Equal(t, model.PriceSourceZapper, repo.priceSources[1])
	})

	t.Run("zeroes provider positions missing from snapshot", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{{ID: 10, Name: "metamask", WalletAddress: ethWallet}}
		repo.positions[posKey{1, 10}] = dec("2.5")
		repo.positions[posKey{2, 10}] = dec("1000")

		api := newFakeBalanceApi()
		api.tokenBalances[ethWallet] = []model.BalanceItem{
			{Address: zeroAddress, Symbol: "ETH", Balance: dec("2.5"), Price: dec("1800")},
		}

		svc := newTestService(repo, api, &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Summary.PositionsZeroed)
		assert.True(t, repo.positions[posKey{2, 10}].IsZero())
		assert.True(t, repo.positions[posKey{1, 10}].Equal(dec("2.5")))
	})

	t.Run("manual positions survive a sync", func(t *testing.T) {
		manualAssets := append([]model.Asset{}, assets...)
		manualAssets = append(manualAssets, model.Asset{ID: 5, Symbol: "GOLD", PriceSource: model.PriceSourceManual})

		repo := newFakeRepo()
		repo.assets = manualAssets
		repo.custodians = []model.Custodian{{ID: 10, Name: "metamask", WalletAddress: ethWallet}}
		repo.positions[posKey{5, 10}] = dec("3")

		svc := newTestService(repo, newFakeBalanceApi(), &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.True(t, result.Success)
		assert.Equal(t, 0, result.Summary.PositionsZeroed)
		assert.True(t, repo.positions[posKey{5, 10}].Equal(dec("3")))
	})

	t.Run("sync is idempotent", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{{ID: 10, Name: "metamask", WalletAddress: ethWallet}}

		api := newFakeBalanceApi()
		api.tokenBalances[ethWallet] = []model.BalanceItem{
			{Address: zeroAddress, Symbol: "ETH", Balance: dec("2.5"), Price: dec("1800")},
		}

		svc := newTestService(repo, api, &fakePriceApi{}, newFakeCache())
		first := svc.SyncWallets(ctx)
		second := svc.SyncWallets(ctx)

		assert.True(t, first.Success)
		assert.True(t, second.Success)
		assert.True(t, repo.positions[posKey{1, 10}].Equal(dec("2.5")))
		assert.Equal(t, 0, second.Summary.PositionsZeroed)
	})

	t.Run("wallet fetch failure does not stop other wallets", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{
			{ID: 10, Name: "broken", WalletAddress: "0x2222222222222222222222222222222222222222"},
			{ID: 11, Name: "metamask", WalletAddress: ethWallet},
		}

		api := newFakeBalanceApi()
		api.errFor["0x2222222222222222222222222222222222222222"] = errors.New("rate limited")
		api.tokenBalances[ethWallet] = []model.BalanceItem{
			{Address: zeroAddress, Symbol: "ETH", Balance: dec("1"), Price: dec("1800")},
		}

		svc := newTestService(repo, api, &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.False(t, result.Success)
		require.Len(t, result.Summary.Errors, 1)
		assert.Contains(t, result.Summary.Errors[0], "rate limited")
		assert.Equal(t, 1, result.Summary.WalletsProcessed)
		assert.True(t, repo.positions[posKey{1, 11}].Equal(dec("1")))
	})

	t.Run("item failure is isolated and recorded", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{{ID: 10, Name: "metamask", WalletAddress: ethWallet}}
		repo.replaceErrFor[1] = errors.New("constraint violation")

		api := newFakeBalanceApi()
		api.tokenBalances[ethWallet] = []model.BalanceItem{
			{Address: zeroAddress, Symbol: "ETH", Balance: dec("2.5"), Price: dec("1800")},
			{Address: "0xusdc", Symbol: "USDC", Balance: dec("1000"), Price: dec("1")},
		}

		svc := newTestService(repo, api, &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.False(t, result.Success)
		require.Len(t, result.Summary.Errors, 1)
		assert.Contains(t, result.Summary.Errors[0], "ETH")
		assert.Equal(t, 1, result.Summary.PositionsUpdated)
		assert.True(t, repo.positions[posKey{2, 10}].Equal(dec("1000")))
	})

	t.Run("unknown tokens are skipped silently", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{{ID: 10, Name: "metamask", WalletAddress: ethWallet}}

		api := newFakeBalanceApi()
		api.tokenBalances[ethWallet] = []model.BalanceItem{
			{Address: "0xdeadbeef", Symbol: "SCAM", Balance: dec("9999"), Price: dec("0.001")},
		}

		svc := newTestService(repo, api, &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.True(t, result.Success)
		assert.Equal(t, 0, result.Summary.PositionsUpdated)
	})

	t.Run("btc wallet uses btc chain scope and skips app balances", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{{ID: 12, Name: "cold storage", WalletAddress: btcWallet}}

		api := newFakeBalanceApi()
		api.tokenBalances[btcWallet] = []model.BalanceItem{
			{Address: zeroAddress, Symbol: "BTC", Balance: dec("0.5"), Price: dec("60000")},
		}

		svc := newTestService(repo, api, &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.True(t, result.Success)
		assert.Equal(t, []int{btcChainID}, api.chainIDCalls[btcWallet])
		assert.Empty(t, api.appCalls)
		assert.True(t, repo.positions[posKey{3, 12}].Equal(dec("0.5")))
	})

	t.Run("cached snapshot skips the provider", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets
		repo.custodians = []model.Custodian{{ID: 10, Name: "metamask", WalletAddress: ethWallet}}

		cache := newFakeCache()
		cache.balances["balances:"+ethWallet] = []model.BalanceItem{
			{Address: zeroAddress, Symbol: "ETH", Balance: dec("1.5"), Price: dec("1700")},
		}

		api := newFakeBalanceApi()

		svc := newTestService(repo, api, &fakePriceApi{}, cache)
		result := svc.SyncWallets(ctx)

		assert.True(t, result.Success)
		assert.Empty(t, api.chainIDCalls)
		assert.True(t, repo.positions[posKey{1, 10}].Equal(dec("1.5")))
	})

	t.Run("setup failure is returned as data", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assetsErr = errors.New("db down")

		svc := newTestService(repo, newFakeBalanceApi(), &fakePriceApi{}, newFakeCache())
		result := svc.SyncWallets(ctx)

		assert.False(t, result.Success)
		require.Len(t, result.Summary.Errors, 1)
		assert.Contains(t, result.Summary.Errors[0], "db down")
		assert.Equal(t, 0, result.Summary.WalletsProcessed)
	})
}

func TestSyncPrices(t *testing.T) {
	ctx := context.Background()

	assets := []model.Asset{
		{ID: 4, Symbol: "VWCE", PriceSource: model.PriceSourceYahoo, ApiIdentifier: "VWCE.DE"},
		{ID: 5, Symbol: "AAPL", PriceSource: model.PriceSourceYahoo, ApiIdentifier: "AAPL"},
		{ID: 1, Symbol: "ETH", PriceSource: model.PriceSourceZapper},
	}

	t.Run("upserts quotes for quote-feed assets only", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets

		priceApi := &fakePriceApi{quotes: map[string]decimal.Decimal{
			"VWCE.DE": dec("112.40"),
			"AAPL":    dec("230.10"),
		}}

		svc := newTestService(repo, newFakeBalanceApi(), priceApi, newFakeCache())
		result := svc.SyncPrices(ctx)

		assert.True(t, result.Success)
		assert.Equal(t, 2, result.Summary.AssetsProcessed)
		assert.Equal(t, 2, result.Summary.PricesUpdated)
		assert.True(t, repo.prices[4].Equal(dec("112.40")))
		assert.Equal(t, model.PriceSourceYahoo, repo.priceSources[4])
		_, ok := repo.prices[1]
		assert.False(t, ok)
	})

	t.Run("failed ticker is recorded and the rest continue", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets

		priceApi := &fakePriceApi{
			quotes: map[string]decimal.Decimal{"AAPL": dec("230.10")},
			errFor: map[string]error{"VWCE.DE": errors.New("upstream 500")},
		}

		svc := newTestService(repo, newFakeBalanceApi(), priceApi, newFakeCache())
		result := svc.SyncPrices(ctx)

		assert.False(t, result.Success)
		require.Len(t, result.Summary.Errors, 1)
		assert.Contains(t, result.Summary.Errors[0], "VWCE")
		assert.Equal(t, 1, result.Summary.PricesUpdated)
		assert.True(t, repo.prices[5].Equal(dec("230.10")))
	})

	t.Run("non-positive quote is skipped without error", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets

		priceApi := &fakePriceApi{quotes: map[string]decimal.Decimal{
			"VWCE.DE": decimal.Zero,
			"AAPL":    dec("230.10"),
		}}

		svc := newTestService(repo, newFakeBalanceApi(), priceApi, newFakeCache())
		result := svc.SyncPrices(ctx)

		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Summary.PricesUpdated)
		_, ok := repo.prices[4]
		assert.False(t, ok)
	})

	t.Run("cached quote skips the provider", func(t *testing.T) {
		repo := newFakeRepo()
		repo.assets = assets[:1]

		cache := newFakeCache()
		cache.quotes["VWCE.DE"] = dec("111.00")

		svc := newTestService(repo, newFakeBalanceApi(), &fakePriceApi{}, cache)
		result := svc.SyncPrices(ctx)

		assert.True(t, result.Success)
		assert.True(t, repo.prices[4].Equal(dec("111.00")))
	})
}
