package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxBuy         TransactionType = "buy"
	TxSell        TransactionType = "sell"
	TxTransferIn  TransactionType = "transfer_in"
	TxTransferOut TransactionType = "transfer_out"
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
)

// quantitySigns maps every transaction type to the sign of its effect on
// the position quantity. Closed table: an unknown type has no effect.
var quantitySigns = map[TransactionType]int{
	TxBuy:         1,
	TxTransferIn:  1,
	TxDeposit:     1,
	TxSell:        -1,
	TxTransferOut: -1,
	TxWithdrawal:  -1,
}

func (t TransactionType) IsValid() bool {
	_, ok := quantitySigns[t]
	return ok
}

// QuantityDelta returns the signed position delta for a transaction of
// this type with the given quantity.
func (t TransactionType) QuantityDelta(quantity decimal.Decimal) decimal.Decimal {
	if quantitySigns[t] < 0 {
		return quantity.Neg()
	}
	return quantity
}

type Transaction struct {
	ID           int64
	AssetID      int64
	CustodianID  int64
	Type         TransactionType
	Quantity     decimal.Decimal
	PricePerUnit *decimal.Decimal
	TotalValue   *decimal.Decimal
	Date         time.Time
	Notes        string
}
