package syncService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avolkov/wealth_tracker_bot/config"
	"github.com/avolkov/wealth_tracker_bot/internal/externalApi"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/utils"
)

// btcChainID is the provider's chain identifier for the Bitcoin network.
const btcChainID = 6172014

var zeroQuantity = decimal.Zero

type Repository interface {
	GetAssets(ctx context.Context) ([]model.Asset, error)
	GetAssetsByPriceSource(ctx context.Context, priceSource string) ([]model.Asset, error)
	GetCustodiansWithWallets(ctx context.Context) ([]model.Custodian, error)
	GetProviderAssetIDs(ctx context.Context, custodianID int64, priceSource string) (map[int64]struct{}, error)
	ReplacePositionQuantity(ctx context.Context, assetID, custodianID int64, quantity decimal.Decimal) error
	UpsertDailyPrice(ctx context.Context, assetID int64, price decimal.Decimal, source string) error
}

type BalanceApi interface {
	GetTokenBalances(ctx context.Context, address string, chainIDs []int) ([]model.BalanceItem, error)
	GetAppBalances(ctx context.Context, address string) ([]model.BalanceItem, error)
}

type PriceApi interface {
	GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error)
}

type Cache interface {
	GetBalances(ctx context.Context, key string) ([]model.BalanceItem, error)
	SetBalances(ctx context.Context, key string, items []model.BalanceItem) error
	GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error)
	SetQuote(ctx context.Context, ticker string, price decimal.Decimal) error
}

type SyncService struct {
	cfg        *config.Config
	repo       Repository
	balanceApi BalanceApi
	priceApi   PriceApi
	cache      Cache
}

func New(cfg *config.Config, repo Repository, balanceApi BalanceApi, priceApi PriceApi, cache Cache) *SyncService {
	return &SyncService{cfg: cfg, repo: repo, balanceApi: balanceApi, priceApi: priceApi, cache: cache}
}

// SyncWallets reconciles every wallet-backed custodian against the
// balance provider. Failures never abort the run: setup errors and
// per-wallet errors all land in the result, and Success means the run
// completed with zero errors.
func (s *SyncService) SyncWallets(ctx context.Context) model.SyncResult {
	rqID := utils.GetRequestIDFromCtx(ctx)
	startedAt := time.Now()
	summary := model.SyncSummary{Errors: make([]string, 0)}

	slog.Info("wallet sync started", slog.String("rqID", rqID), slog.String("op", "SyncService.SyncWallets"))

	assets, err := s.repo.GetAssets(ctx)
	if err != nil {
		summary.Errors = append(summary.Errors, "failed to load assets: "+err.Error())
		return finishSync(summary)
	}

	custodians, err := s.repo.GetCustodiansWithWallets(ctx)
	if err != nil {
		summary.Errors = append(summary.Errors, "failed to load custodians: "+err.Error())
		return finishSync(summary)
	}

	lookup := buildAssetLookup(assets)

	for i, custodian := range custodians {
		s.syncWallet(ctx, custodian, lookup, &summary)
		if i < len(custodians)-1 {
			time.Sleep(s.cfg.Sync.WalletDelay)
		}
	}

	result := finishSync(summary)
	slog.Info(
		"wallet sync finished",
		slog.String("rqID", rqID),
		slog.Bool("success", result.Success),
		slog.Int("walletsProcessed", result.Summary.WalletsProcessed),
		slog.Int("positionsUpdated", result.Summary.PositionsUpdated),
		slog.Int("positionsZeroed", result.Summary.PositionsZeroed),
		slog.Int("errors", len(result.Summary.Errors)),
		slog.Duration("duration", time.Since(startedAt)),
	)
	return result
}

// SyncPrices refreshes daily quotes for all quote-feed assets. Invalid
// quotes are skipped with a warning, failed fetches are recorded per
// ticker.
func (s *SyncService) SyncPrices(ctx context.Context) model.PriceSyncResult {
	rqID := utils.GetRequestIDFromCtx(ctx)
	startedAt := time.Now()
	summary := model.PriceSyncSummary{Errors: make([]string, 0)}

	slog.Info("price sync started", slog.String("rqID", rqID), slog.String("op", "SyncService.SyncPrices"))

	assets, err := s.repo.GetAssetsByPriceSource(ctx, model.PriceSourceYahoo)
	if err != nil {
		summary.Errors = append(summary.Errors, "failed to load assets: "+err.Error())
		return finishPriceSync(summary)
	}

	for i, asset := range assets {
		summary.AssetsProcessed++
		price, err := s.fetchQuote(ctx, asset.ApiIdentifier)
		if err != nil {
			summary.Errors = append(summary.Errors, asset.Symbol+": "+err.Error())
		} else if !price.IsPositive() {
			slog.Warn("skipping non-positive quote", slog.String("rqID", rqID), slog.String("ticker", asset.ApiIdentifier))
		} else if err := s.repo.UpsertDailyPrice(ctx, asset.ID, price, model.PriceSourceYahoo); err != nil {
			summary.Errors = append(summary.Errors, asset.Symbol+": "+err.Error())
		} else {
			summary.PricesUpdated++
		}

		if i < len(assets)-1 {
			time.Sleep(s.cfg.Sync.TickerDelay)
		}
	}

	result := finishPriceSync(summary)
	slog.Info(
		"price sync finished",
		slog.String("rqID", rqID),
		slog.Bool("success", result.Success),
		slog.Int("assetsProcessed", result.Summary.AssetsProcessed),
		slog.Int("pricesUpdated", result.Summary.PricesUpdated),
		slog.Int("errors", len(result.Summary.Errors)),
		slog.Duration("duration", time.Since(startedAt)),
	)
	return result
}

func (s *SyncService) fetchQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if price, err := s.cache.GetQuote(ctx, ticker); err == nil {
		return price, nil
	}

	price, err := s.priceApi.GetQuote(ctx, ticker)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("ticker not found: %w", err)
		}
		return decimal.Zero, err
	}

	if err := s.cache.SetQuote(ctx, ticker, price); err != nil {
		slog.Warn("can't cache quote", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	return price, nil
}

func finishSync(summary model.SyncSummary) model.SyncResult {
	return model.SyncResult{
		Success:  len(summary.Errors) == 0,
		SyncedAt: time.Now(),
		Summary:  summary,
	}
}

func finishPriceSync(summary model.PriceSyncSummary) model.PriceSyncResult {
	return model.PriceSyncResult{
		Success:  len(summary.Errors) == 0,
		SyncedAt: time.Now(),
		Summary:  summary,
	}
}

func isBtcWallet(address string) bool {
	return strings.HasPrefix(address, "bc1")
}

// truncateAddress shortens a wallet address for logs and user-facing
// error strings.
func truncateAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
