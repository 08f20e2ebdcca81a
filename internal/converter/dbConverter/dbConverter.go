package dbConverter

import (
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/model/dbModel"
)

func ConvertAsset(dbAsset dbModel.Asset) model.Asset {
	return model.Asset{
		ID:            dbAsset.ID,
		Symbol:        dbAsset.Symbol,
		Name:          dbAsset.Name,
		AssetType:     dbAsset.AssetType,
		PriceSource:   dbAsset.PriceSource.String,
		ApiIdentifier: dbAsset.ApiIdentifier.String,
	}
}

func ConvertAssets(dbAssets []dbModel.Asset) []model.Asset {
	assets := make([]model.Asset, 0, len(dbAssets))
	for _, dbAsset := range dbAssets {
		assets = append(assets, ConvertAsset(dbAsset))
	}
	return assets
}

func ConvertCustodian(dbCustodian dbModel.Custodian) model.Custodian {
	return model.Custodian{
		ID:            dbCustodian.ID,
		Name:          dbCustodian.Name,
		Type:          dbCustodian.Type,
		WalletAddress: dbCustodian.WalletAddress.String,
	}
}

func ConvertCustodians(dbCustodians []dbModel.Custodian) []model.Custodian {
	custodians := make([]model.Custodian, 0, len(dbCustodians))
	for _, dbCustodian := range dbCustodians {
		custodians = append(custodians, ConvertCustodian(dbCustodian))
	}
	return custodians
}

func ConvertTransaction(dbTx dbModel.Transaction) model.Transaction {
	tx := model.Transaction{
		ID:          dbTx.ID,
		AssetID:     dbTx.AssetID,
		CustodianID: dbTx.CustodianID,
		Type:        model.TransactionType(dbTx.Type),
		Quantity:    dbTx.Quantity,
		Date:        dbTx.Date,
		Notes:       dbTx.Notes.String,
	}
	if dbTx.PricePerUnit.Valid {
		price := dbTx.PricePerUnit.Decimal
		tx.PricePerUnit = &price
	}
	if dbTx.TotalValue.Valid {
		total := dbTx.TotalValue.Decimal
		tx.TotalValue = &total
	}
	return tx
}

func ConvertTransactions(dbTxs []dbModel.Transaction) []model.Transaction {
	txs := make([]model.Transaction, 0, len(dbTxs))
	for _, dbTx := range dbTxs {
		txs = append(txs, ConvertTransaction(dbTx))
	}
	return txs
}

func ConvertHoldings(dbHoldings []dbModel.Holding) []model.Holding {
	holdings := make([]model.Holding, 0, len(dbHoldings))
	for _, dbHolding := range dbHoldings {
		holdings = append(holdings, model.Holding{
			AssetID:   dbHolding.AssetID,
			Symbol:    dbHolding.Symbol,
			AssetName: dbHolding.AssetName,
			AssetType: dbHolding.AssetType,
			Quantity:  dbHolding.Quantity,
			Price:     dbHolding.Price,
		})
	}
	return holdings
}

func ConvertPositionValues(dbValues []dbModel.PositionValue) []model.PositionValue {
	values := make([]model.PositionValue, 0, len(dbValues))
	for _, dbValue := range dbValues {
		values = append(values, model.PositionValue{
			Symbol:        dbValue.Symbol,
			AssetType:     dbValue.AssetType,
			CustodianName: dbValue.CustodianName,
			Value:         dbValue.Value,
		})
	}
	return values
}
