package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"github.com/avolkov/wealth_tracker_bot/data/session"
	"github.com/avolkov/wealth_tracker_bot/internal/converter/telebotConverter"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/service"
	"github.com/avolkov/wealth_tracker_bot/utils"
)

const internalErrMsg = "something went wrong..."

const startMsg = `Hi! I track your portfolio across wallets and brokers.

/summary - portfolio breakdown
/pnl - P&L report for all holdings
/pnl_asset - P&L report for one asset
/sync - sync wallet balances now
/prices - refresh market quotes now
/report - export P&L report to xlsx
/tx SYMBOL CUSTODIAN TYPE QTY [PRICE] - record a transaction`

type PortfolioService interface {
	GetPnlReport(ctx context.Context, assetID *int64, includeZero bool) (model.PnlReport, error)
	GetPnlReportForSymbol(ctx context.Context, symbol string) (model.PnlReport, error)
	GetPortfolioSummary(ctx context.Context) (model.PortfolioSummary, error)
	RecordTransaction(ctx context.Context, symbol, custodianName string, txType model.TransactionType, quantity decimal.Decimal, pricePerUnit *decimal.Decimal, date time.Time) (model.Transaction, error)
	ExportPnlReport(ctx context.Context) (downloadLink string, err error)
}

type SyncService interface {
	SyncWallets(ctx context.Context) model.SyncResult
	SyncPrices(ctx context.Context) model.PriceSyncResult
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type Controller struct {
	portfolioService PortfolioService
	syncService      SyncService
	session          Session
}

func NewController(portfolioService PortfolioService, syncService SyncService, session Session) *Controller {
	return &Controller{
		portfolioService: portfolioService,
		syncService:      syncService,
		session:          session,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send(startMsg)
}

func (ctrl *Controller) Summary(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	summary, err := ctrl.portfolioService.GetPortfolioSummary(ctx)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.PortfolioSummaryResponse(summary))
}

func (ctrl *Controller) PnlReport(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	report, err := ctrl.portfolioService.GetPnlReport(ctx, nil, false)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.PnlReportResponse(report))
}

func (ctrl *Controller) InitAssetPnlReport(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	strChatID := strconv.FormatInt(c.Chat().ID, 10)

	chatSession, err := ctrl.session.GetSession(ctx, strChatID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	chatSession.Action = model.ExpectingAssetSymbol
	err = ctrl.session.SetSession(ctx, strChatID, chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("Enter the asset symbol:")
}

func (ctrl *Controller) ProcessAssetPnlReport(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	defer func() {
		chatSession.Action = model.DefaultAction
		_ = ctrl.session.SetSession(ctx, strconv.FormatInt(c.Chat().ID, 10), chatSession)
	}()

	symbol := strings.ToUpper(strings.TrimSpace(c.Message().Text))

	report, err := ctrl.portfolioService.GetPnlReportForSymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, service.ErrUnknownAsset) {
			return c.Send("unknown asset: " + symbol)
		}
		slog.Error("got error from portfolioService.GetPnlReportForSymbol", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.PnlReportResponse(report))
}

func (ctrl *Controller) SyncWallets(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	if err := c.Send("Syncing wallets, this may take a while..."); err != nil {
		return err
	}

	result := ctrl.syncService.SyncWallets(ctx)
	return c.Send(telebotConverter.SyncResultResponse(result))
}

func (ctrl *Controller) SyncPrices(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	result := ctrl.syncService.SyncPrices(ctx)
	return c.Send(telebotConverter.PriceSyncResultResponse(result))
}

func (ctrl *Controller) ExportReport(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	link, err := ctrl.portfolioService.ExportPnlReport(ctx)
	if err != nil {
		slog.Error("got error from portfolioService.ExportPnlReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("Report uploaded: " + link)
}

// RecordTransaction handles /tx SYMBOL CUSTODIAN TYPE QTY [PRICE].
func (ctrl *Controller) RecordTransaction(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	args := c.Args()
	if len(args) < 4 || len(args) > 5 {
		return c.Send("usage: /tx SYMBOL CUSTODIAN TYPE QTY [PRICE]")
	}

	symbol := strings.ToUpper(args[0])
	custodianName := args[1]
	txType := model.TransactionType(strings.ToLower(args[2]))

	quantity, err := decimal.NewFromString(args[3])
	if err != nil {
		return c.Send("invalid quantity: " + args[3])
	}

	var pricePerUnit *decimal.Decimal
	if len(args) == 5 {
		price, err := decimal.NewFromString(args[4])
		if err != nil {
			return c.Send("invalid price: " + args[4])
		}
		pricePerUnit = &price
	}

	tx, err := ctrl.portfolioService.RecordTransaction(ctx, symbol, custodianName, txType, quantity, pricePerUnit, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownAsset):
			return c.Send("unknown asset: " + symbol)
		case errors.Is(err, service.ErrUnknownCustodian):
			return c.Send("unknown custodian: " + custodianName)
		case errors.Is(err, service.ErrInvalidTransaction):
			return c.Send("invalid transaction: check type and quantity")
		default:
			slog.Error("got error from portfolioService.RecordTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send(internalErrMsg)
		}
	}

	return c.Send(telebotConverter.TransactionRecordedResponse(tx, symbol))
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		}
		return model.Session{}, err
	}
	return chatSession, nil
}
