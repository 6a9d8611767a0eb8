package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"taskbit/internal/bot"
	"taskbit/internal/model"
	"taskbit/internal/service"
)

// writerNotifier prints reminders instead of sending them.
type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Notify(_ context.Context, user *model.User, text string) error {
	recipient := fmt.Sprintf("user %d", user.ID)
	if user.Email != nil {
		recipient = *user.Email
	}
	_, err := fmt.Fprintf(n.w, "--- to %s\n%s\n", recipient, text)
	return err
}

func dispatchCmd(opts *rootOptions) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Send every due alert once and exit",
		Long: `Send every active alert whose scheduled instant has passed.

Reminders go through Telegram when TELEGRAM_TOKEN is set. With --print or
without a token they are written to stdout and still marked fired.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var notifier service.Notifier = writerNotifier{w: cmd.OutOrStdout()}
			if !printOnly && a.cfg.TelegramToken != "" {
				telegramBot, err := bot.New(a.cfg.TelegramToken, bot.Services{
					Identity:  a.identity,
					Tasks:     a.tasks,
					Alerts:    a.alerts,
					Courses:   a.courses,
					Reminders: a.reminders,
				}, a.clock)
				if err != nil {
					return err
				}
				notifier = telegramBot
			}

			limiter := rate.NewLimiter(rate.Limit(a.cfg.NotifyRate), 1)
			dispatcher := service.NewDispatchService(a.store, a.clock, a.reminders, notifier, limiter)
			report, err := dispatcher.DispatchDue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "delivered=%d failed=%d skipped=%d\n", report.Delivered, report.Failed, report.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print reminders instead of sending them")
	return cmd
}
