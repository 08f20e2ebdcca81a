package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/avolkov/wealth_tracker_bot/data/repository"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/service"
	"github.com/avolkov/wealth_tracker_bot/utils"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetHoldings(ctx context.Context, includeZero bool, assetID *int64) ([]model.Holding, error)
	GetTransactions(ctx context.Context, assetID *int64) ([]model.Transaction, error)
	GetPositionValues(ctx context.Context) ([]model.PositionValue, error)
	GetAssetBySymbol(ctx context.Context, symbol string) (model.Asset, error)
	GetCustodianByName(ctx context.Context, name string) (model.Custodian, error)
	InsertTransaction(ctx context.Context, tx model.Transaction) (txID int64, err error)
	ApplyPositionDelta(ctx context.Context, assetID, custodianID int64, delta decimal.Decimal) error
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.PnlReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type PortfolioService struct {
	repo            Repository
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
}

func New(repo Repository, reportGenerator ReportGenerator, cloudStorage CloudStorage) *PortfolioService {
	return &PortfolioService{
		repo:            repo,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

// GetPnlReport loads holdings and the full ledger, derives cost basis
// aggregates and evaluates P&L per asset. The ledger is re-read on every
// call; there is no aggregate cache to invalidate.
func (s *PortfolioService) GetPnlReport(ctx context.Context, assetID *int64, includeZero bool) (report model.PnlReport, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPnlReport"

	slog.Debug("GetPnlReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("includeZero", includeZero))
	defer func() {
		slog.Debug("GetPnlReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	holdings, err := s.repo.GetHoldings(ctx, includeZero, assetID)
	if err != nil {
		slog.Error("got error from repo.GetHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PnlReport{}, err
	}

	txs, err := s.repo.GetTransactions(ctx, assetID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PnlReport{}, err
	}

	return BuildPnlReport(holdings, AggregateCostBasis(txs), time.Now()), nil
}

func (s *PortfolioService) GetPortfolioSummary(ctx context.Context) (summary model.PortfolioSummary, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolioSummary"

	slog.Debug("GetPortfolioSummary start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetPortfolioSummary finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	values, err := s.repo.GetPositionValues(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPositionValues", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	return BuildPortfolioSummary(values, time.Now()), nil
}

// RecordTransaction appends a ledger entry and delta-applies it to the
// position row in one database transaction. The ledger itself is never
// mutated afterwards.
func (s *PortfolioService) RecordTransaction(
	ctx context.Context,
	symbol string,
	custodianName string,
	txType model.TransactionType,
	quantity decimal.Decimal,
	pricePerUnit *decimal.Decimal,
	date time.Time,
) (tx model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RecordTransaction"

	slog.Debug("RecordTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("type", string(txType)))
	defer func() {
		slog.Debug("RecordTransaction finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if !txType.IsValid() || !quantity.IsPositive() {
		return model.Transaction{}, service.ErrInvalidTransaction
	}

	asset, err := s.repo.GetAssetBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Transaction{}, service.ErrUnknownAsset
		}
		slog.Error("got error from repo.GetAssetBySymbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	custodian, err := s.repo.GetCustodianByName(ctx, custodianName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Transaction{}, service.ErrUnknownCustodian
		}
		slog.Error("got error from repo.GetCustodianByName", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	tx = model.Transaction{
		AssetID:      asset.ID,
		CustodianID:  custodian.ID,
		Type:         txType,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		Date:         date,
	}
	if pricePerUnit != nil {
		total := quantity.Mul(*pricePerUnit)
		tx.TotalValue = &total
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		txID, err := s.repo.InsertTransaction(ctx, tx)
		if err != nil {
			return err
		}
		tx.ID = txID

		return s.repo.ApplyPositionDelta(ctx, asset.ID, custodian.ID, txType.QuantityDelta(quantity))
	})
	if err != nil {
		slog.Error("got error from repo.WithinTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	return tx, nil
}

// GetPnlReportForSymbol resolves a symbol to its catalog asset and
// builds a report scoped to it. Zero-quantity holdings are included so a
// fully sold position still shows its realized P&L.
func (s *PortfolioService) GetPnlReportForSymbol(ctx context.Context, symbol string) (report model.PnlReport, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPnlReportForSymbol"

	asset, err := s.repo.GetAssetBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PnlReport{}, service.ErrUnknownAsset
		}
		slog.Error("got error from repo.GetAssetBySymbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PnlReport{}, err
	}

	return s.GetPnlReport(ctx, &asset.ID, true)
}

// ExportPnlReport renders the current P&L report to xlsx and uploads it
// to cloud storage, returning a shareable download link.
func (s *PortfolioService) ExportPnlReport(ctx context.Context) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportPnlReport"

	slog.Debug("ExportPnlReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportPnlReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	report, err := s.GetPnlReport(ctx, nil, false)
	if err != nil {
		return "", err
	}

	fileBytes, fileExtension, err := s.reportGenerator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("pnl_report_%s%s", report.GeneratedAt.Format("2006-01-02_15-04-05"), fileExtension)

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}
