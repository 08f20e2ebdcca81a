package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
)

func PnlReportResponse(report model.PnlReport) string {
	var sb strings.Builder

	sb.WriteString("📈 P&L report\n\n")
	sb.WriteString(fmt.Sprintf("💰 Total value: $%s\n", report.Summary.TotalCurrentValue.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("🏷 Cost basis: $%s\n", report.Summary.TotalCostBasis.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("📊 Unrealized: %s", signedAmount(report.Summary.TotalUnrealizedPnl)))
	if report.Summary.TotalUnrealizedPnlPct != nil {
		sb.WriteString(fmt.Sprintf(" (%s%%)", report.Summary.TotalUnrealizedPnlPct.StringFixed(2)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("✅ Realized: %s\n\n", signedAmount(report.Summary.TotalRealizedPnl)))

	for _, pos := range report.Positions {
		sb.WriteString(fmt.Sprintf("**%s (%s)**\n", pos.Symbol, pos.AssetName))
		sb.WriteString(fmt.Sprintf("   ▸ Qty: %s @ $%s = $%s\n",
			pos.CurrentQuantity.String(), pos.CurrentPrice.StringFixed(2), pos.CurrentValue.StringFixed(2)))

		if !pos.HasCostBasis {
			sb.WriteString("   ▸ no cost basis\n\n")
			continue
		}

		sb.WriteString(fmt.Sprintf("   ▸ Avg cost: $%s\n", pos.CostBasis.AvgCostPerUnit.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("   ▸ Unrealized: %s", signedAmount(pos.Unrealized.Amount)))
		if pos.Unrealized.Percent != nil {
			sb.WriteString(fmt.Sprintf(" (%s%%)", pos.Unrealized.Percent.StringFixed(2)))
		}
		sb.WriteString("\n")
		if !pos.Realized.TotalQtySold.IsZero() {
			sb.WriteString(fmt.Sprintf("   ▸ Realized: %s\n", signedAmount(pos.Realized.Amount)))
		}
		if pos.Performance.Apy != nil {
			sb.WriteString(fmt.Sprintf("   ▸ APY: %s%% over %d days\n", pos.Performance.Apy.StringFixed(2), *pos.Performance.HoldingDays))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func PortfolioSummaryResponse(summary model.PortfolioSummary) string {
	var sb strings.Builder

	sb.WriteString("📊 Portfolio summary\n\n")
	sb.WriteString(fmt.Sprintf("💰 Total value: $%s\n\n", summary.TotalValue.StringFixed(2)))

	sb.WriteString("By asset type:\n")
	writeSlices(&sb, summary.ByAssetType)

	sb.WriteString("\nBy custodian:\n")
	writeSlices(&sb, summary.ByCustodian)

	sb.WriteString("\nTop holdings:\n")
	writeSlices(&sb, summary.TopHoldings)

	return sb.String()
}

func SyncResultResponse(result model.SyncResult) string {
	var sb strings.Builder

	if result.Success {
		sb.WriteString("✅ Wallet sync completed\n\n")
	} else {
		sb.WriteString("⚠️ Wallet sync completed with errors\n\n")
	}

	sb.WriteString(fmt.Sprintf("Wallets processed: %d\n", result.Summary.WalletsProcessed))
	sb.WriteString(fmt.Sprintf("Positions updated: %d\n", result.Summary.PositionsUpdated))
	sb.WriteString(fmt.Sprintf("Positions zeroed: %d\n", result.Summary.PositionsZeroed))
	sb.WriteString(fmt.Sprintf("Prices updated: %d\n", result.Summary.PricesUpdated))

	writeErrors(&sb, result.Summary.Errors)

	return sb.String()
}

func PriceSyncResultResponse(result model.PriceSyncResult) string {
	var sb strings.Builder

	if result.Success {
		sb.WriteString("✅ Price sync completed\n\n")
	} else {
		sb.WriteString("⚠️ Price sync completed with errors\n\n")
	}

	sb.WriteString(fmt.Sprintf("Assets processed: %d\n", result.Summary.AssetsProcessed))
	sb.WriteString(fmt.Sprintf("Prices updated: %d\n", result.Summary.PricesUpdated))

	writeErrors(&sb, result.Summary.Errors)

	return sb.String()
}

func TransactionRecordedResponse(tx model.Transaction, symbol string) string {
	var sb strings.Builder

	sb.WriteString("✅ Transaction recorded\n\n")
	sb.WriteString(fmt.Sprintf("%s %s x %s", strings.ToUpper(string(tx.Type)), symbol, tx.Quantity.String()))
	if tx.PricePerUnit != nil {
		sb.WriteString(fmt.Sprintf(" @ $%s", tx.PricePerUnit.StringFixed(2)))
	}
	if tx.TotalValue != nil {
		sb.WriteString(fmt.Sprintf(" = $%s", tx.TotalValue.StringFixed(2)))
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeSlices(sb *strings.Builder, slices []model.SummarySlice) {
	for _, slice := range slices {
		sb.WriteString(fmt.Sprintf("   ▸ %s: $%s (%s%%)\n",
			slice.Name, slice.Value.StringFixed(2), slice.Percentage.StringFixed(1)))
	}
}

func writeErrors(sb *strings.Builder, errs []string) {
	if len(errs) == 0 {
		return
	}
	sb.WriteString("\nErrors:\n")
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("   ▸ %s\n", e))
	}
}

func signedAmount(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return fmt.Sprintf("-$%s", amount.Abs().StringFixed(2))
	}
	return fmt.Sprintf("+$%s", amount.StringFixed(2))
}
