package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"

	"github.com/avolkov/wealth_tracker_bot/config"
	"github.com/avolkov/wealth_tracker_bot/data/session"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/transport/telegram"
	customMW "github.com/avolkov/wealth_tracker_bot/internal/transport/telegram/middleware"
	"github.com/avolkov/wealth_tracker_bot/utils"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type TGBot struct {
	cfg     *config.Config
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{cfg: cfg, bot: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(
		middleware.Recover(),
		middleware.Whitelist(b.cfg.Telegram.AllowedChatIDs...),
		customMW.Logger(),
	)

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	// free text is routed by the stored session action
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)

		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return c.Send("start with one of the commands, see /start")
			}
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("something went wrong...")
		}

		c.Set("session", chatSession)

		switch chatSession.Action {
		case model.ExpectingAssetSymbol:
			return b.ctrl.ProcessAssetPnlReport(c)
		default:
			slog.Error("unexpected chatSession action", slog.String("rqID", rqID), slog.Any("action", chatSession.Action))
			return c.Send("start with one of the commands, see /start")
		}
	})

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/summary", b.ctrl.Summary)
	b.bot.Handle("/pnl", b.ctrl.PnlReport)
	b.bot.Handle("/pnl_asset", b.ctrl.InitAssetPnlReport)
	b.bot.Handle("/sync", b.ctrl.SyncWallets)
	b.bot.Handle("/prices", b.ctrl.SyncPrices)
	b.bot.Handle("/report", b.ctrl.ExportReport)
	b.bot.Handle("/tx", b.ctrl.RecordTransaction)
}
