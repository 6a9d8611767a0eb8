package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskbit/internal/config"
	"taskbit/internal/repository"
	"taskbit/internal/service"
)

var Version = "dev"

type rootOptions struct {
	dsn string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "taskbit",
		Short:         "Task tracker with due-date reminders",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "db", "", "SQLite DSN (overrides DATABASE_URL)")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))
	rootCmd.AddCommand(userCmd(opts))
	rootCmd.AddCommand(taskCmd(opts))
	rootCmd.AddCommand(alertCmd(opts))
	rootCmd.AddCommand(dispatchCmd(opts))
	return rootCmd
}

// app holds the wiring shared by every sub-command.
type app struct {
	cfg       config.Config
	db        *gorm.DB
	store     *repository.Store
	clock     service.Clock
	identity  *service.IdentityService
	tasks     *service.TaskService
	alerts    *service.AlertService
	courses   *service.CourseService
	reminders *service.ReminderService
}

func openApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if opts.dsn != "" {
		cfg.DatabaseURL = opts.dsn
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return newApp(cfg, db), nil
}

func newApp(cfg config.Config, db *gorm.DB) *app {
	store := repository.NewStore(db)
	clock := service.SystemClock{Location: cfg.Location}
	return &app{
		cfg:       cfg,
		db:        db,
		store:     store,
		clock:     clock,
		identity:  service.NewIdentityService(store),
		tasks:     service.NewTaskService(store, clock),
		alerts:    service.NewAlertService(store, clock),
		courses:   service.NewCourseService(store),
		reminders: service.NewReminderService(store),
	}
}

func (a *app) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
