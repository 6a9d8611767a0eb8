package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"taskbit/internal/model"
	"taskbit/internal/repository"
)

// ErrNoRecipient is returned by a Notifier that has no channel to reach the user.
var ErrNoRecipient = errors.New("no recipient channel")

const defaultDispatchBatch = 200

// Notifier delivers a rendered reminder to a user.
type Notifier interface {
	Notify(ctx context.Context, user *model.User, text string) error
}

// DispatchReport counts the outcome of one dispatch run.
type DispatchReport struct {
	Delivered int
	Failed    int
	Skipped   int
}

// DispatchService fires due alerts through a Notifier.
type DispatchService struct {
	store     *repository.Store
	clock     Clock
	reminders *ReminderService
	notifier  Notifier
	limiter   *rate.Limiter
	batchSize int
}

// NewDispatchService builds a dispatcher. A nil limiter disables rate limiting.
func NewDispatchService(store *repository.Store, clock Clock, reminders *ReminderService, notifier Notifier, limiter *rate.Limiter) *DispatchService {
	return &DispatchService{
		store:     store,
		clock:     clock,
		reminders: reminders,
		notifier:  notifier,
		limiter:   limiter,
		batchSize: defaultDispatchBatch,
	}
}

// DispatchDue delivers every active alert whose scheduled instant has passed and
// marks it fired. Due alerts are read in batches so that skipped or failed
// alerts never hide the ones behind them; they stay active for the next run.
func (s *DispatchService) DispatchDue(ctx context.Context) (DispatchReport, error) {
	var report DispatchReport
	now := s.clock.Now()
	users := make(map[uint]*model.User)
	var lastID uint
	total := 0
	for {
		due, err := s.store.Alerts.ListDue(ctx, now, lastID, s.batchSize)
		if err != nil {
			return report, err
		}
		for i := range due {
			if err := s.dispatchOne(ctx, &due[i], now, users, &report); err != nil {
				return report, err
			}
		}
		total += len(due)
		if len(due) == 0 || s.batchSize <= 0 || len(due) < s.batchSize {
			break
		}
		lastID = due[len(due)-1].ID
	}

	if total > 0 {
		log.Printf("[dispatch] due=%d delivered=%d failed=%d skipped=%d", total, report.Delivered, report.Failed, report.Skipped)
	}
	return report, nil
}

func (s *DispatchService) dispatchOne(ctx context.Context, alert *model.Alert, now time.Time, users map[uint]*model.User, report *DispatchReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if alert.Task == nil {
		report.Skipped++
		return nil
	}

	user, ok := users[alert.Task.UserID]
	if !ok {
		var err error
		user, err = s.store.Users.FindByID(ctx, alert.Task.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find user: %w", err)
		}
		users[alert.Task.UserID] = user
	}
	if user == nil || !user.Enabled {
		report.Skipped++
		return nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := s.notifier.Notify(ctx, user, s.reminders.AlertText(alert, now)); err != nil {
		if errors.Is(err, ErrNoRecipient) {
			report.Skipped++
			return nil
		}
		log.Printf("[dispatch] alert=%d user=%d: %v", alert.ID, user.ID, err)
		report.Failed++
		return nil
	}

	fired, err := s.store.Alerts.MarkFired(ctx, alert.ID, s.clock.Now())
	if err != nil {
		return err
	}
	if fired {
		report.Delivered++
	}
	return nil
}
