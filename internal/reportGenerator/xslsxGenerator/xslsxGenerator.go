package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/utils"
)

const sheetName = "PnL Report"

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.PnlReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if len(report.Positions) == 0 {
		return nil, "", errors.New("empty report")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSheet(ctx, f, report); err != nil {
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillSheet(ctx context.Context, f *excelize.File, report model.PnlReport) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.fillSheet"

	_, err := f.NewSheet(sheetName)
	if err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	// positions section
	if err := f.MergeCell(sheetName, "A1", "J1"); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Positions")

	styleID, err := g.headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("failed to apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "symbol")
	_ = f.SetCellStr(sheetName, "B2", "type")
	_ = f.SetCellStr(sheetName, "C2", "quantity")
	_ = f.SetCellStr(sheetName, "D2", "avg cost")
	_ = f.SetCellStr(sheetName, "E2", "price")
	_ = f.SetCellStr(sheetName, "F2", "value")
	_ = f.SetCellStr(sheetName, "G2", "cost basis")
	_ = f.SetCellStr(sheetName, "H2", "unrealized P&L")
	_ = f.SetCellStr(sheetName, "I2", "realized P&L")
	_ = f.SetCellStr(sheetName, "J2", "APY %")

	for i, position := range report.Positions {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), position.Symbol)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), position.AssetType)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), position.CurrentQuantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), position.CurrentPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), position.CurrentValue.InexactFloat64())
		if position.CostBasis != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), position.CostBasis.AvgCostPerUnit.InexactFloat64())
			holdingBasis := position.CostBasis.AvgCostPerUnit.Mul(position.CurrentQuantity)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), holdingBasis.InexactFloat64())
		}
		if position.Unrealized != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), position.Unrealized.Amount.InexactFloat64())
		}
		if position.Realized != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), position.Realized.Amount.InexactFloat64())
		}
		if position.Performance != nil && position.Performance.Apy != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), position.Performance.Apy.InexactFloat64())
		}
	}

	// summary section
	rowNum := len(report.Positions) + 5

	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("B%d", rowNum)); err != nil {
		return err
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), "Summary")

	styleID, err = g.headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), styleID); err != nil {
		return fmt.Errorf("failed to apply style: %w", err)
	}

	summaryRows := []struct {
		label string
		value float64
		skip  bool
	}{
		{label: "total value", value: report.Summary.TotalCurrentValue.InexactFloat64()},
		{label: "total cost basis", value: report.Summary.TotalCostBasis.InexactFloat64()},
		{label: "total unrealized P&L", value: report.Summary.TotalUnrealizedPnl.InexactFloat64()},
		{
			label: "total unrealized P&L %",
			value: pctOrZero(report.Summary.TotalUnrealizedPnlPct),
			skip:  report.Summary.TotalUnrealizedPnlPct == nil,
		},
		{label: "total realized P&L", value: report.Summary.TotalRealizedPnl.InexactFloat64()},
	}

	for _, summaryRow := range summaryRows {
		rowNum++
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), summaryRow.label)
		if !summaryRow.skip {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), summaryRow.value)
		}
	}

	rowNum += 2
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "generated at")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), time.Now().Format("2006-01-02 15:04:05"))

	return nil
}

func (g *XSLSXGenerator) headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func pctOrZero(v *decimal.Decimal) float64 {
	if v == nil {
		return 0
	}
	return v.InexactFloat64()
}
