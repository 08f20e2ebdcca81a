package postgres

import (
	"context"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/internal/converter/dbConverter"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/model/dbModel"
	"github.com/avolkov/wealth_tracker_bot/utils"
	"github.com/shopspring/decimal"
)

// ReplacePositionQuantity sets the position quantity to an absolute value
// coming from an external snapshot (last write wins).
func (r *Postgres) ReplacePositionQuantity(ctx context.Context, assetID, custodianID int64, quantity decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO positions (asset_id, custodian_id, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (asset_id, custodian_id)
		DO UPDATE SET quantity = $3, updated_at = NOW()
	`

	slog.Debug("ReplacePositionQuantity start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ReplacePositionQuantity failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("ReplacePositionQuantity completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, assetID, custodianID, quantity)
	return err
}

// ApplyPositionDelta adjusts the position quantity by a signed delta, the
// manual transaction entry path.
func (r *Postgres) ApplyPositionDelta(ctx context.Context, assetID, custodianID int64, delta decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO positions (asset_id, custodian_id, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (asset_id, custodian_id)
		DO UPDATE SET quantity = positions.quantity + $3, updated_at = NOW()
	`

	slog.Debug("ApplyPositionDelta start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ApplyPositionDelta failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("ApplyPositionDelta completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, assetID, custodianID, delta)
	return err
}

// GetProviderAssetIDs returns IDs of assets with a positive-quantity
// position at the custodian whose price source is the given provider.
// Scoping to the provider keeps a sync from zeroing manually entered or
// differently sourced rows.
func (r *Postgres) GetProviderAssetIDs(ctx context.Context, custodianID int64, source string) (assetIDs map[int64]struct{}, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT p.asset_id
		FROM positions p
		JOIN assets a ON a.id = p.asset_id
		WHERE p.custodian_id = $1
		AND a.price_source = $2
		AND p.quantity > 0
	`

	slog.Debug("GetProviderAssetIDs start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetProviderAssetIDs failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetProviderAssetIDs completed", slog.String("rqID", rqID))
		}
	}()

	ids := []int64{}
	err = r.txOrDb(ctx).SelectContext(ctx, &ids, query, custodianID, source)
	if err != nil {
		return nil, err
	}

	assetIDs = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		assetIDs[id] = struct{}{}
	}
	return assetIDs, nil
}

// GetHoldings returns per-asset quantities aggregated across custodians
// with the latest known price. Assets without any position row are never
// reported; zero-quantity holdings only when includeZero is set.
func (r *Postgres) GetHoldings(ctx context.Context, includeZero bool, assetID *int64) (holdings []model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT
			a.id AS asset_id,
			a.symbol,
			a.name AS asset_name,
			at.name AS asset_type,
			SUM(p.quantity) AS quantity,
			COALESCE(ph.price, 0) AS price
		FROM positions p
		JOIN assets a ON a.id = p.asset_id
		JOIN asset_types at ON at.id = a.asset_type_id
		LEFT JOIN LATERAL (
			SELECT price FROM price_history
			WHERE asset_id = a.id ORDER BY price_date DESC LIMIT 1
		) ph ON true
		WHERE ($1::bigint IS NULL OR a.id = $1)
		GROUP BY a.id, a.symbol, a.name, at.name, ph.price
		HAVING $2::boolean OR SUM(p.quantity) > 0
		ORDER BY SUM(p.quantity) * COALESCE(ph.price, 0) DESC
	`

	slog.Debug("GetHoldings start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHoldings failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHoldings completed", slog.String("rqID", rqID))
		}
	}()

	dbHoldings := []dbModel.Holding{}
	err = r.txOrDb(ctx).SelectContext(ctx, &dbHoldings, query, assetID, includeZero)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertHoldings(dbHoldings), nil
}

// GetPositionValues returns every positive-quantity position valued at
// the latest price, the input of the portfolio summary.
func (r *Postgres) GetPositionValues(ctx context.Context) (values []model.PositionValue, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT
			a.symbol,
			at.name AS asset_type,
			c.name AS custodian_name,
			p.quantity * COALESCE(ph.price, 0) AS value
		FROM positions p
		JOIN assets a ON a.id = p.asset_id
		JOIN asset_types at ON at.id = a.asset_type_id
		JOIN custodians c ON c.id = p.custodian_id
		LEFT JOIN LATERAL (
			SELECT price FROM price_history
			WHERE asset_id = a.id ORDER BY price_date DESC LIMIT 1
		) ph ON true
		WHERE p.quantity > 0
		ORDER BY value DESC
	`

	slog.Debug("GetPositionValues start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPositionValues failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPositionValues completed", slog.String("rqID", rqID))
		}
	}()

	dbValues := []dbModel.PositionValue{}
	err = r.txOrDb(ctx).SelectContext(ctx, &dbValues, query)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertPositionValues(dbValues), nil
}
