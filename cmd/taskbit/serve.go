package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"taskbit/internal/bot"
	"taskbit/internal/service"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the alert dispatcher",
		Long: `Run the Telegram bot and the periodic alert dispatcher.

Environment:
  TELEGRAM_TOKEN             bot token (required)
  DATABASE_URL               SQLite DSN, default taskbit.db
  DISPATCH_INTERVAL_MINUTES  how often due alerts are sent, default 1
  DIGEST_TIME                HH:MM for the daily digest, disabled when empty
  TIMEZONE                   IANA zone used for "today", default local
  NOTIFY_RATE_PER_SECOND     outgoing message rate, default 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(parent context.Context, a *app) error {
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	limiter := rate.NewLimiter(rate.Limit(a.cfg.NotifyRate), 1)
	dispatcher := service.NewDispatchService(a.store, a.clock, a.reminders, telegramBot, limiter)

	scheduler := service.NewSchedulerService(a.cfg.Location, time.Minute)
	if _, err := scheduler.ScheduleInterval("dispatch", a.cfg.DispatchInterval, func(ctx context.Context) error {
		_, err := dispatcher.DispatchDue(ctx)
		return err
	}); err != nil {
		return err
	}
	if a.cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily("digest", a.cfg.DigestTime, telegramBot.SendDigests); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	log.Println("[info] taskbit bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("[info] shutdown complete")
	return nil
}
