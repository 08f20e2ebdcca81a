package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/data/repository"
	"github.com/avolkov/wealth_tracker_bot/internal/converter/dbConverter"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/model/dbModel"
	"github.com/avolkov/wealth_tracker_bot/utils"
)

const selectAssets = `
	SELECT a.id, a.symbol, a.name, at.name AS asset_type, a.price_source, a.api_identifier
	FROM assets a
	JOIN asset_types at ON at.id = a.asset_type_id
`

func (r *Postgres) GetAssets(ctx context.Context) (assets []model.Asset, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := selectAssets + ` ORDER BY a.id`

	slog.Debug("GetAssets start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetAssets failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetAssets completed", slog.String("rqID", rqID))
		}
	}()

	dbAssets := []dbModel.Asset{}
	err = r.txOrDb(ctx).SelectContext(ctx, &dbAssets, query)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertAssets(dbAssets), nil
}

func (r *Postgres) GetAssetsByPriceSource(ctx context.Context, source string) (assets []model.Asset, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := selectAssets + ` WHERE a.price_source = $1 ORDER BY a.id`

	slog.Debug("GetAssetsByPriceSource start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetAssetsByPriceSource failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetAssetsByPriceSource completed", slog.String("rqID", rqID))
		}
	}()

	dbAssets := []dbModel.Asset{}
	err = r.txOrDb(ctx).SelectContext(ctx, &dbAssets, query, source)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertAssets(dbAssets), nil
}

func (r *Postgres) GetAssetBySymbol(ctx context.Context, symbol string) (asset model.Asset, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := selectAssets + ` WHERE LOWER(a.symbol) = LOWER($1)`

	slog.Debug("GetAssetBySymbol start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetAssetBySymbol failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetAssetBySymbol completed", slog.String("rqID", rqID))
		}
	}()

	dbAsset := dbModel.Asset{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, symbol).StructScan(&dbAsset)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Asset{}, repository.ErrNotFound
		}
		return model.Asset{}, err
	}

	return dbConverter.ConvertAsset(dbAsset), nil
}

func (r *Postgres) GetCustodianByName(ctx context.Context, name string) (custodian model.Custodian, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT id, name, type, wallet_address
		FROM custodians
		WHERE LOWER(name) = LOWER($1)
	`

	slog.Debug("GetCustodianByName start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetCustodianByName failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCustodianByName completed", slog.String("rqID", rqID))
		}
	}()

	dbCustodian := dbModel.Custodian{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, name).StructScan(&dbCustodian)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Custodian{}, repository.ErrNotFound
		}
		return model.Custodian{}, err
	}

	return dbConverter.ConvertCustodian(dbCustodian), nil
}

// GetCustodiansWithWallets returns custodians eligible for wallet sync,
// i.e. those with an external wallet address configured.
func (r *Postgres) GetCustodiansWithWallets(ctx context.Context) (custodians []model.Custodian, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT id, name, type, wallet_address
		FROM custodians
		WHERE wallet_address IS NOT NULL
		ORDER BY id
	`

	slog.Debug("GetCustodiansWithWallets start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetCustodiansWithWallets failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCustodiansWithWallets completed", slog.String("rqID", rqID))
		}
	}()

	dbCustodians := []dbModel.Custodian{}
	err = r.txOrDb(ctx).SelectContext(ctx, &dbCustodians, query)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertCustodians(dbCustodians), nil
}
