package syncService

import (
	"strings"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
)

// zeroAddress is the cross-chain sentinel external providers report for
// native tokens. The same sentinel stands for different assets on
// different chains, so native tokens must never be matched by address.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// assetLookup indexes the asset catalog by lowercase external identifier
// and lowercase symbol.
type assetLookup map[string]model.Asset

func buildAssetLookup(assets []model.Asset) assetLookup {
	lookup := make(assetLookup, len(assets)*2)
	for _, asset := range assets {
		if asset.ApiIdentifier != "" {
			lookup[strings.ToLower(asset.ApiIdentifier)] = asset
		}
		lookup[strings.ToLower(asset.Symbol)] = asset
	}
	return lookup
}

// Resolve matches one external balance item to a catalog asset.
// Native tokens are matched by symbol, everything else by address with a
// symbol fallback. A miss is expected for untracked tokens and is not an
// error.
func (l assetLookup) Resolve(item model.BalanceItem) (model.Asset, bool) {
	address := strings.ToLower(item.Address)
	if address == "" {
		return model.Asset{}, false
	}

	if address == zeroAddress {
		asset, ok := l[strings.ToLower(item.Symbol)]
		return asset, ok
	}

	if asset, ok := l[address]; ok {
		return asset, true
	}

	asset, ok := l[strings.ToLower(item.Symbol)]
	return asset, ok
}
