package main

import (
	"fmt"
	"log/slog"
	"time"

	"tg_journal/internal/alias"
	"tg_journal/internal/config"
	"tg_journal/internal/httpmiddleware"
	"tg_journal/internal/report"
	"tg_journal/internal/storage"
	"tg_journal/internal/telegram"
)

const (
	// long polling держит запрос до 60 секунд
	telegramTimeout  = 75 * time.Second
	coingeckoTimeout = 15 * time.Second
	userAgent        = "journal-bot/1.0"
)

// app - общие зависимости команд
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *storage.Store
	tg      *telegram.Service
	aliases *alias.Service
	reports *report.Generator
}

// newApp открывает хранилище и, если нужен Telegram, авторизует бота
func newApp(cfg *config.Config, logger *slog.Logger, withTelegram bool) (*app, error) {
	store, err := storage.New(cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		aliases: alias.NewService(store, logger),
	}

	var sender report.Sender
	if withTelegram {
		client := httpmiddleware.NewClient(telegramTimeout,
			httpmiddleware.Logger(logger.With(slog.String("client", "telegram")), httpmiddleware.LogOptions{}))

		a.tg, err = telegram.New(cfg.TelegramToken, client, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init telegram: %w", err)
		}
		sender = a.tg
	}

	a.reports = report.NewGenerator(store, a.aliases, sender, report.NewLineChart(), cfg.ReportChannelID, cfg.Location, logger)

	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close storage", slog.Any("error", err))
	}
}
