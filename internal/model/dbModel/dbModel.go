package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Asset struct {
	ID            int64          `db:"id"`
	Symbol        string         `db:"symbol"`
	Name          string         `db:"name"`
	AssetType     string         `db:"asset_type"`
	PriceSource   sql.NullString `db:"price_source"`
	ApiIdentifier sql.NullString `db:"api_identifier"`
}

type Custodian struct {
	ID            int64          `db:"id"`
	Name          string         `db:"name"`
	Type          string         `db:"type"`
	WalletAddress sql.NullString `db:"wallet_address"`
}

type Transaction struct {
	ID           int64               `db:"id"`
	AssetID      int64               `db:"asset_id"`
	CustodianID  int64               `db:"custodian_id"`
	Type         string              `db:"transaction_type"`
	Quantity     decimal.Decimal     `db:"quantity"`
	PricePerUnit decimal.NullDecimal `db:"price_per_unit"`
	TotalValue   decimal.NullDecimal `db:"total_value"`
	Date         time.Time           `db:"transaction_date"`
	Notes        sql.NullString      `db:"notes"`
}

type Holding struct {
	AssetID   int64           `db:"asset_id"`
	Symbol    string          `db:"symbol"`
	AssetName string          `db:"asset_name"`
	AssetType string          `db:"asset_type"`
	Quantity  decimal.Decimal `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}

type PositionValue struct {
	Symbol        string          `db:"symbol"`
	AssetType     string          `db:"asset_type"`
	CustodianName string          `db:"custodian_name"`
	Value         decimal.Decimal `db:"value"`
}
