package main

import (
	"fmt"
	"io"
	"log/slog"

	"tg_journal/internal/config"
	"tg_journal/internal/logging"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "journal-bot",
		Short: "Telegram trading journal bot",
		Long: `journal-bot records scalp and swing trades through Telegram dialogues,
publishes weekly and monthly reports to a channel and relays sector signals.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(
		newServeCmd(opts),
		newReportCmd(opts),
	)

	return cmd
}

// setup загружает конфигурацию и создает логгер
func (o *rootOptions) setup() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, closer, nil
}
