package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/data/repository"
	"github.com/avolkov/wealth_tracker_bot/internal/converter/dbConverter"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/model/dbModel"
	"github.com/avolkov/wealth_tracker_bot/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Postgres) InsertTransaction(ctx context.Context, tx model.Transaction) (txID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions (
			asset_id, custodian_id, transaction_type, quantity,
			price_per_unit, total_value, transaction_date, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID))
		}
	}()

	var notes any
	if tx.Notes != "" {
		notes = tx.Notes
	}

	err = r.txOrDb(ctx).QueryRowContext(
		ctx, query,
		tx.AssetID, tx.CustodianID, string(tx.Type), tx.Quantity,
		tx.PricePerUnit, tx.TotalValue, tx.Date, notes,
	).Scan(&txID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23503" { // foreign_key_violation
				return 0, repository.ErrNotFound
			}
		}
		return 0, err
	}

	return txID, nil
}

// GetTransactions reads the full ledger in date order, optionally
// filtered to one asset. The ledger is append only; this is the sole
// input of cost basis aggregation.
func (r *Postgres) GetTransactions(ctx context.Context, assetID *int64) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT id, asset_id, custodian_id, transaction_type, quantity,
			price_per_unit, total_value, transaction_date, notes
		FROM transactions
		WHERE ($1::bigint IS NULL OR asset_id = $1)
		ORDER BY transaction_date, id
	`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID))
		}
	}()

	dbTxs := []dbModel.Transaction{}
	err = r.txOrDb(ctx).SelectContext(ctx, &dbTxs, query, assetID)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertTransactions(dbTxs), nil
}
