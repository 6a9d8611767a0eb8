package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskbit/internal/model"
)

// NewDB opens the SQLite database at dsn, creating its directory when the DSN
// points at a file, and migrates the schema. An empty dsn means taskbit.db.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "taskbit.db"
	}
	if path, ok := sqliteFilePath(dsn); ok {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir %q: %w", dir, err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db %q: %w", dsn, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate brings the users, tasks and alerts tables up to date.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.Alert{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// sqliteFilePath extracts the on-disk path of dsn. In-memory databases report false.
func sqliteFilePath(dsn string) (string, bool) {
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return "", false
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	return path, path != ""
}

func newGormLogger() logger.Interface {
	return logger.New(log.New(os.Stderr, "[db] ", log.LstdFlags), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db     *gorm.DB
	Users  *UserRepository
	Tasks  *TaskRepository
	Alerts *AlertRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		Users:  NewUserRepository(db),
		Tasks:  NewTaskRepository(db),
		Alerts: NewAlertRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single database transaction.
// The transaction is rolled back when fn returns an error.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks that the underlying connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
