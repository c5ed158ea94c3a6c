package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tg_journal/internal/api"
	"tg_journal/internal/config"
	"tg_journal/internal/dialogue"
	"tg_journal/internal/httpmiddleware"
	"tg_journal/internal/report"
	"tg_journal/internal/scheduler"
	"tg_journal/internal/sector"
	"tg_journal/internal/telegram"
	"tg_journal/internal/telegram/handlers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the HTTP server and the report scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := opts.setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := cfg.Validate(); err != nil {
				logger.Error("❌ Invalid configuration", slog.Any("error", err))
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("=== Trading Journal Bot ===", slog.Any("config", cfg))

	a, err := newApp(cfg, logger, true)
	if err != nil {
		logger.Error("❌ Failed to initialize", slog.Any("error", err))
		return err
	}
	defer a.Close()

	if err := a.tg.SetCommands(telegram.Commands); err != nil {
		logger.Warn("⚠️ Failed to set bot commands", slog.Any("error", err))
	}

	// Диалоги
	sessions := dialogue.NewSessions(cfg.SessionTTL, dialogue.DefaultSessionCapacity, logger)
	go sessions.Run(ctx)

	conv := dialogue.NewConversation(a.store, a.tg, sessions, cfg.Location, logger)
	handler := handlers.New(a.tg, conv, a.aliases, a.reports, logger)

	// Сектора
	relay, err := newRelay(a)
	if err != nil {
		logger.Error("❌ Failed to initialize sector relay", slog.Any("error", err))
		return err
	}

	// Отчёты
	sched := scheduler.New(logger)
	registerReports(sched, a.reports, cfg.ReportHour, cfg.ReportMinute, cfg.Location)
	sched.Start(ctx)

	// HTTP сервер
	var webhook http.Handler
	if cfg.Webhook() {
		webhook = a.tg.WebhookHandler()
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      api.New(a.store, relay, logger).SetupRouter(cfg.WebhookPath, webhook),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // /sector ждёт лимитер CoinGecko
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("📡 HTTP server starting...", slog.String("address", cfg.Address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Выбор режима работы: webhook или polling
	var updates tgbotapi.UpdatesChannel
	if cfg.Webhook() {
		if err := a.tg.SetWebhook(cfg.WebhookEndpoint()); err != nil {
			logger.Error("Failed to set webhook", slog.Any("error", err))
			shutdown(srv, sched, a, false, logger)
			return err
		}
		updates = a.tg.WebhookUpdatesChan()
	} else {
		if err := a.tg.DeleteWebhook(); err != nil {
			logger.Warn("⚠️ Failed to delete webhook", slog.Any("error", err))
		}
		logger.Info("📡 Listening for updates (polling mode)...")
		updates = a.tg.GetUpdatesChan()
	}

	logger.Info("🚀 Bot started")

	// Обновления обрабатываются последовательно, чтобы события одного чата шли по порядку
	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serverErr:
			logger.Error("HTTP server failed", slog.Any("error", err))
			runErr = err
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			handler.HandleUpdate(ctx, update)
		}
	}

	logger.Info("🛑 Shutting down bot...")
	shutdown(srv, sched, a, !cfg.Webhook(), logger)
	logger.Info("✅ Bot stopped")

	return runErr
}

func shutdown(srv *http.Server, sched *scheduler.Scheduler, a *app, polling bool, logger *slog.Logger) {
	sched.Stop()

	if polling {
		a.tg.StopReceivingUpdates()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("error", err))
	}
}

func newRelay(a *app) (*sector.Relay, error) {
	mapping, err := sector.LoadMapping(a.cfg.SectorsFile)
	if err != nil {
		return nil, err
	}

	client := httpmiddleware.NewClient(coingeckoTimeout,
		httpmiddleware.UserAgent(userAgent),
		httpmiddleware.Logger(a.logger.With(slog.String("client", "coingecko")), httpmiddleware.LogOptions{MaxBody: 256}))

	markets := sector.NewCoinGecko(a.cfg.CoinGeckoURL, client, a.logger)
	limiter := sector.NewLimiter(sector.DefaultCategoryCooldown, sector.DefaultGlobalGap, time.Now)

	return sector.NewRelay(markets, limiter, a.store, a.tg, mapping, a.cfg.AlertChatID, a.cfg.Location, a.logger), nil
}

// registerReports регистрирует ежедневный недельный и ежемесячный отчёты
func registerReports(sched *scheduler.Scheduler, reports *report.Generator, hour, minute int, loc *time.Location) {
	sched.Register(&scheduler.Job{
		Name:        "weekly_report",
		Description: "Trailing 7-day report",
		Schedule:    scheduler.DailyAt(hour, minute, loc),
		Handler: func(ctx context.Context) error {
			return reports.Publish(ctx, report.PeriodWeek)
		},
	})

	sched.Register(&scheduler.Job{
		Name:        "monthly_report",
		Description: fmt.Sprintf("Trailing 30-day report on day 1 at %02d:%02d", hour, minute),
		Schedule:    scheduler.MonthlyAt(1, hour, minute, loc),
		Handler: func(ctx context.Context) error {
			return reports.Publish(ctx, report.PeriodMonth)
		},
	})
}
