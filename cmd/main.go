package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avolkov/wealth_tracker_bot/config"
	"github.com/avolkov/wealth_tracker_bot/data"
	"github.com/avolkov/wealth_tracker_bot/data/cache"
	"github.com/avolkov/wealth_tracker_bot/data/repository/postgres"
	"github.com/avolkov/wealth_tracker_bot/data/session"
	"github.com/avolkov/wealth_tracker_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/avolkov/wealth_tracker_bot/internal/externalApi/yahooApi"
	"github.com/avolkov/wealth_tracker_bot/internal/externalApi/zapperApi"
	"github.com/avolkov/wealth_tracker_bot/internal/reportGenerator/xslsxGenerator"
	"github.com/avolkov/wealth_tracker_bot/internal/scheduler"
	"github.com/avolkov/wealth_tracker_bot/internal/service/portfolioService"
	"github.com/avolkov/wealth_tracker_bot/internal/service/syncService"
	"github.com/avolkov/wealth_tracker_bot/internal/tgbot"
	"github.com/avolkov/wealth_tracker_bot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	zapperApiClient := zapperApi.New(cfg)
	yahooApiClient := yahooApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	portfolioSrv := portfolioService.New(pgRepo, reportGenerator, googleCloudStorage)
	syncSrv := syncService.New(cfg, pgRepo, zapperApiClient, yahooApiClient, redisCache)

	sched := scheduler.New()
	sched.NewIntervalJob("wallet sync", func(ctx context.Context) error {
		result := syncSrv.SyncWallets(ctx)
		if !result.Success {
			return errors.New("wallet sync finished with errors")
		}
		return nil
	}, cfg.Jobs.WalletSyncInterval, true)
	sched.NewIntervalJob("price sync", func(ctx context.Context) error {
		result := syncSrv.SyncPrices(ctx)
		if !result.Success {
			return errors.New("price sync finished with errors")
		}
		return nil
	}, cfg.Jobs.PriceSyncInterval, false)
	sched.NewIntervalJob("drive cleanup", googleCloudStorage.DeleteOldFiles, cfg.Jobs.DriveCleanupInterval, false)
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(portfolioSrv, syncSrv, redisSession)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
