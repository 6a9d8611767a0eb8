package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"taskbit/internal/model"
	"taskbit/internal/repository"
)

// AlertService creates and lists reminder alerts.
type AlertService struct {
	store *repository.Store
	clock Clock
}

func NewAlertService(store *repository.Store, clock Clock) *AlertService {
	return &AlertService{store: store, clock: clock}
}

// CreateAlert schedules a reminder leadTime before the task's due date.
// Checks run in order and stop at the first failure.
func (s *AlertService) CreateAlert(ctx context.Context, taskID, requesterID uint, leadTime string) (*AlertView, error) {
	var view AlertView
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		_, task, err := authorizeTask(ctx, tx, taskID, requesterID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if task.DueDate == nil {
			return newError(ErrMissingDueDate, "task %d", task.ID)
		}
		if DateOf(*task.DueDate).Before(DateOf(now)) {
			return newError(ErrTaskExpired, "task %d was due %s", task.ID, task.DueDate.Format(dateLayout))
		}
		if strings.TrimSpace(leadTime) == "" {
			return newError(ErrMissingLeadTime, "lead time is required")
		}

		lead, err := ParseLeadTime(leadTime)
		if err != nil {
			return err
		}
		exists, err := tx.Alerts.ExistsForTask(ctx, task.ID, lead.String())
		if err != nil {
			return err
		}
		if exists {
			return newError(ErrDuplicateAlert, "task %d already has a %s alert", task.ID, lead)
		}

		alert := model.Alert{
			TaskID:       task.ID,
			LeadTime:     lead.String(),
			ScheduledFor: ScheduledFor(*task.DueDate, lead.Hours),
			Status:       model.AlertActive,
			CreatedAt:    now,
		}
		if err := tx.Alerts.Create(ctx, &alert); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return newError(ErrDuplicateAlert, "task %d already has a %s alert", task.ID, lead)
			}
			return err
		}
		log.Printf("[info] alert created id=%d task=%d lead=%q at=%s", alert.ID, task.ID, alert.LeadTime, alert.ScheduledFor.Format(time.RFC3339))

		alert.Task = task
		view = ProjectAlert(&alert)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListAlerts returns every alert on the requester's tasks.
func (s *AlertService) ListAlerts(ctx context.Context, requesterID uint) ([]AlertView, error) {
	return s.listOwned(ctx, requesterID, nil)
}

// ListActiveAlerts returns the active alerts on the requester's tasks.
func (s *AlertService) ListActiveAlerts(ctx context.Context, requesterID uint) ([]AlertView, error) {
	active := model.AlertActive
	return s.listOwned(ctx, requesterID, &active)
}

// ListTaskAlerts returns the alerts of one task owned by the requester.
func (s *AlertService) ListTaskAlerts(ctx context.Context, taskID, requesterID uint) ([]AlertView, error) {
	_, task, err := authorizeTask(ctx, s.store, taskID, requesterID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.store.Alerts.ListByTasks(ctx, []uint{task.ID}, nil)
	if err != nil {
		return nil, err
	}
	return ProjectAlerts(alerts), nil
}

func (s *AlertService) listOwned(ctx context.Context, requesterID uint, status *model.AlertStatus) ([]AlertView, error) {
	user, err := requireUser(ctx, s.store, requesterID)
	if err != nil {
		return nil, err
	}
	taskIDs, err := s.store.Tasks.ListIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.store.Alerts.ListByTasks(ctx, taskIDs, status)
	if err != nil {
		return nil, err
	}
	return ProjectAlerts(alerts), nil
}
