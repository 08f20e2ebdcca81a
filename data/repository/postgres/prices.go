package postgres

import (
	"context"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/utils"
	"github.com/shopspring/decimal"
)

// UpsertDailyPrice writes today's price for the asset, overwriting a
// previous record for the same day. Idempotent on (asset_id, price_date).
func (r *Postgres) UpsertDailyPrice(ctx context.Context, assetID int64, price decimal.Decimal, source string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO price_history (asset_id, price, price_date, source)
		VALUES ($1, $2, CURRENT_DATE, $3)
		ON CONFLICT (asset_id, price_date)
		DO UPDATE SET price = $2, source = $3
	`

	slog.Debug("UpsertDailyPrice start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertDailyPrice failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertDailyPrice completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, assetID, price, source)
	return err
}
