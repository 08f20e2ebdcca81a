package syncService

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/utils"
)

// syncWallet reconciles one custodian against a freshly fetched balance
// snapshot: matched items replace position quantities, previously tracked
// provider-sourced holdings missing from the snapshot are zeroed. A fetch
// failure fails only this wallet; a single item failure is recorded and
// processing continues.
func (s *SyncService) syncWallet(ctx context.Context, custodian model.Custodian, lookup assetLookup, summary *model.SyncSummary) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	truncated := truncateAddress(custodian.WalletAddress)
	isBtc := isBtcWallet(custodian.WalletAddress)

	slog.Info("processing wallet", slog.String("rqID", rqID), slog.String("wallet", truncated), slog.Bool("btc", isBtc))

	// scoped to this provider so manually entered rows are never zeroed
	existingAssetIDs, err := s.repo.GetProviderAssetIDs(ctx, custodian.ID, model.PriceSourceZapper)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("wallet %s: %s", truncated, err))
		return
	}

	items, err := s.fetchWalletBalances(ctx, custodian.WalletAddress, isBtc)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("wallet %s: %s", truncated, err))
		return
	}

	foundAssetIDs := s.processItems(ctx, items, custodian, lookup, summary, truncated)

	for assetID := range existingAssetIDs {
		if _, found := foundAssetIDs[assetID]; found {
			continue
		}
		if err := s.repo.ReplacePositionQuantity(ctx, assetID, custodian.ID, zeroQuantity); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("wallet %s: failed to zero asset %d: %s", truncated, assetID, err))
			continue
		}
		summary.PositionsZeroed++
		slog.Info("zeroed position", slog.String("rqID", rqID), slog.Int64("assetID", assetID), slog.Int64("custodianID", custodian.ID))
	}

	summary.WalletsProcessed++
	slog.Info("completed wallet", slog.String("rqID", rqID), slog.String("wallet", truncated))
}

// fetchWalletBalances returns the flattened snapshot for the wallet,
// served from cache within the TTL. BTC wallets are fetched with the BTC
// chain scope and cannot host app positions, so those are skipped.
func (s *SyncService) fetchWalletBalances(ctx context.Context, address string, isBtc bool) ([]model.BalanceItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	cacheKey := "balances:" + address
	if items, err := s.cache.GetBalances(ctx, cacheKey); err == nil {
		slog.Debug("wallet balances served from cache", slog.String("rqID", rqID), slog.String("wallet", truncateAddress(address)))
		return items, nil
	}

	var chainIDs []int
	if isBtc {
		chainIDs = []int{btcChainID}
	}

	items, err := s.balanceApi.GetTokenBalances(ctx, address, chainIDs)
	if err != nil {
		return nil, err
	}

	if !isBtc {
		appItems, err := s.balanceApi.GetAppBalances(ctx, address)
		if err != nil {
			return nil, err
		}
		items = append(items, appItems...)
	}

	if err := s.cache.SetBalances(ctx, cacheKey, items); err != nil {
		slog.Warn("can't cache wallet balances", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	return items, nil
}

// processItems resolves and upserts every snapshot item, returning the
// set of asset IDs present in the snapshot. Item failures are isolated.
func (s *SyncService) processItems(
	ctx context.Context,
	items []model.BalanceItem,
	custodian model.Custodian,
	lookup assetLookup,
	summary *model.SyncSummary,
	truncated string,
) map[int64]struct{} {
	rqID := utils.GetRequestIDFromCtx(ctx)
	foundAssetIDs := make(map[int64]struct{})

	for _, item := range items {
		asset, ok := lookup.Resolve(item)
		if !ok {
			slog.Warn(
				"unknown token, skipping",
				slog.String("rqID", rqID),
				slog.String("symbol", item.Symbol),
				slog.String("address", item.Address),
			)
			continue
		}

		if err := s.repo.ReplacePositionQuantity(ctx, asset.ID, custodian.ID, item.Balance); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("wallet %s: failed to upsert %s: %s", truncated, asset.Symbol, err))
			continue
		}
		summary.PositionsUpdated++
		foundAssetIDs[asset.ID] = struct{}{}

		if item.Price.IsPositive() {
			if err := s.repo.UpsertDailyPrice(ctx, asset.ID, item.Price, model.PriceSourceZapper); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("wallet %s: failed to upsert price for %s: %s", truncated, asset.Symbol, err))
				continue
			}
			summary.PricesUpdated++
		}
	}

	return foundAssetIDs
}
