package service

import (
	"context"
	"log"
	"strings"
	"time"

	"taskbit/internal/model"
	"taskbit/internal/repository"
)

// TaskInput carries the editable fields of a task. Status is ignored on create.
type TaskInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    *string
	Course      *string
	Status      *string
}

// TaskQuery filters a task listing. Empty fields match everything.
type TaskQuery struct {
	Status   string
	Priority string
	Course   string
}

// DeleteOptions tunes DeleteTask.
type DeleteOptions struct {
	// DisableAlerts disables active alerts before the delete instead of refusing it.
	DisableAlerts bool
}

// TaskService wraps task-related business logic.
type TaskService struct {
	store *repository.Store
	clock Clock
}

func NewTaskService(store *repository.Store, clock Clock) *TaskService {
	return &TaskService{store: store, clock: clock}
}

type taskFields struct {
	title       string
	description *string
	dueDate     *time.Time
	priority    *model.Priority
	course      *string
}

// validateFields checks title, due date and priority. The due date must be after
// today unless it is unchanged from current.
func (s *TaskService) validateFields(input TaskInput, current *model.Task, now time.Time) (taskFields, error) {
	fields := taskFields{
		title:       strings.TrimSpace(input.Title),
		description: trimmedOrNil(input.Description),
		course:      trimmedOrNil(input.Course),
	}
	if fields.title == "" {
		return fields, newError(ErrMissingRequiredField, "title is required")
	}

	if input.DueDate != nil {
		due := DateOf(*input.DueDate)
		fields.dueDate = &due
		unchanged := current != nil && sameDate(current.DueDate, fields.dueDate)
		if !unchanged && !due.After(DateOf(now)) {
			return fields, newError(ErrInvalidDueDate, "due date %s must be after today", due.Format(dateLayout))
		}
	}

	if raw := trimmedOrNil(input.Priority); raw != nil {
		priority, err := model.ParsePriority(*raw)
		if err != nil {
			return fields, newError(ErrInvalidPriority, "%q is not high, medium or low", *raw)
		}
		fields.priority = &priority
	}

	return fields, nil
}

func parseStatus(raw string) (model.TaskStatus, error) {
	status, err := model.ParseTaskStatus(raw)
	if err != nil {
		return "", newError(ErrInvalidStatus, "%q is not pending, in progress or completed", strings.TrimSpace(raw))
	}
	return status, nil
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID uint, input TaskInput) (*TaskView, error) {
	var view TaskView
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := requireUser(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		fields, err := s.validateFields(input, nil, s.clock.Now())
		if err != nil {
			return err
		}

		task := model.Task{
			UserID:      user.ID,
			Title:       fields.title,
			Description: fields.description,
			DueDate:     fields.dueDate,
			Priority:    fields.priority,
			Course:      fields.course,
			Status:      model.StatusPending,
		}
		if err := tx.Tasks.Create(ctx, &task); err != nil {
			return err
		}
		log.Printf("[info] task created id=%d user=%d", task.ID, user.ID)
		view = ProjectTask(&task)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID uint, query TaskQuery) ([]TaskView, error) {
	user, err := requireUser(ctx, s.store, ownerID)
	if err != nil {
		return nil, err
	}

	filter := repository.TaskFilter{Course: query.Course}
	if strings.TrimSpace(query.Status) != "" {
		status, err := parseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if strings.TrimSpace(query.Priority) != "" {
		priority, err := model.ParsePriority(query.Priority)
		if err != nil {
			return nil, newError(ErrInvalidPriority, "%q is not high, medium or low", query.Priority)
		}
		filter.Priority = &priority
	}

	tasks, err := s.store.Tasks.ListByUser(ctx, user.ID, filter)
	if err != nil {
		return nil, err
	}
	return ProjectTasks(tasks), nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID, requesterID uint) (*TaskView, error) {
	_, task, err := authorizeTask(ctx, s.store, taskID, requesterID)
	if err != nil {
		return nil, err
	}
	view := ProjectTask(task)
	return &view, nil
}

// UpdateTask replaces the editable fields of a task. A nil or blank Status keeps
// the current status. Changing the due date disables the task's active alerts.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, requesterID uint, input TaskInput) (*TaskView, error) {
	var view TaskView
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, task, err := authorizeTask(ctx, tx, taskID, requesterID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		fields, err := s.validateFields(input, task, now)
		if err != nil {
			return err
		}

		status := task.Status
		if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
			if status, err = parseStatus(*input.Status); err != nil {
				return err
			}
		}

		dueChanged := !sameDate(task.DueDate, fields.dueDate)
		task.Title = fields.title
		task.Description = fields.description
		task.DueDate = fields.dueDate
		task.Priority = fields.priority
		task.Course = fields.course
		task.TransitionTo(status, now)

		if err := tx.Tasks.Save(ctx, task); err != nil {
			return err
		}
		if dueChanged {
			disabled, err := tx.Alerts.DisableActive(ctx, task.ID)
			if err != nil {
				return err
			}
			if disabled > 0 {
				log.Printf("[info] due date changed, disabled %d alerts task=%d", disabled, task.ID)
			}
		}
		log.Printf("[info] task updated id=%d user=%d status=%s", task.ID, user.ID, task.Status)
		view = ProjectTask(task)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateTaskStatus moves a task to another status without touching other fields.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID, requesterID uint, status string) (*TaskView, error) {
	var view TaskView
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		_, task, err := authorizeTask(ctx, tx, taskID, requesterID)
		if err != nil {
			return err
		}
		next, err := parseStatus(status)
		if err != nil {
			return err
		}

		task.TransitionTo(next, s.clock.Now())
		if err := tx.Tasks.Save(ctx, task); err != nil {
			return err
		}
		log.Printf("[info] task status id=%d status=%s", task.ID, task.Status)
		view = ProjectTask(task)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeactivateTaskAlerts disables every active alert of the task.
func (s *TaskService) DeactivateTaskAlerts(ctx context.Context, taskID, requesterID uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		_, task, err := authorizeTask(ctx, tx, taskID, requesterID)
		if err != nil {
			return err
		}
		disabled, err := tx.Alerts.DisableActive(ctx, task.ID)
		if err != nil {
			return err
		}
		log.Printf("[info] alerts disabled task=%d count=%d", task.ID, disabled)
		return nil
	})
}

// DeleteTask removes a task and all of its alerts. It refuses while any alert is
// active unless opts.DisableAlerts is set.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, requesterID uint, opts DeleteOptions) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, task, err := authorizeTask(ctx, tx, taskID, requesterID)
		if err != nil {
			return err
		}
		if opts.DisableAlerts {
			if _, err := tx.Alerts.DisableActive(ctx, task.ID); err != nil {
				return err
			}
		}

		active, err := tx.Alerts.CountByTask(ctx, task.ID, model.AlertActive)
		if err != nil {
			return err
		}
		if active > 0 {
			return newError(ErrTaskHasActiveAlerts, "task %d has %d active alerts", task.ID, active)
		}

		if err := tx.Alerts.DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		if err := tx.Tasks.Delete(ctx, task); err != nil {
			return err
		}
		log.Printf("[info] task deleted id=%d user=%d", task.ID, user.ID)
		return nil
	})
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
