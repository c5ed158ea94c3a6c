package main

import (
	"errors"
	"fmt"
	"log/slog"

	"tg_journal/internal/report"

	"github.com/spf13/cobra"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		period    string
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a report now and publish it to the report channel",
		Example: `  journal-bot report --period week
  journal-bot report --period month --print`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := report.ParsePeriod(period)
			if err != nil {
				return err
			}

			cfg, logger, closer, err := opts.setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			if !printOnly {
				if cfg.TelegramToken == "" {
					return errors.New("TELEGRAM_BOT_TOKEN not set (use --print to write the report to stdout)")
				}
				if cfg.ReportChannelID == 0 {
					return errors.New("REPORT_CHANNEL_ID not set")
				}
			}

			a, err := newApp(cfg, logger, !printOnly)
			if err != nil {
				return err
			}
			defer a.Close()

			if printOnly {
				r, err := a.reports.Build(cmd.Context(), p)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Format(r))
				return err
			}

			if err := a.reports.Publish(cmd.Context(), p); err != nil {
				logger.Error("❌ Failed to publish report", slog.String("period", period), slog.Any("error", err))
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(report.PeriodWeek), "report period: week or month")
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the report to stdout instead of publishing it")

	return cmd
}
