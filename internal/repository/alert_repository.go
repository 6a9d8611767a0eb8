package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskbit/internal/model"
)

// AlertRepository handles CRUD for alerts.
type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts alert. A clash on (task_id, lead_time) returns ErrDuplicate.
func (r *AlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	if err := r.db.WithContext(ctx).Omit("Task").Create(alert).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) ExistsForTask(ctx context.Context, taskID uint, leadTime string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("task_id = ? AND lead_time = ?", taskID, leadTime).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("find alert: %w", err)
	}
	return count > 0, nil
}

func (r *AlertRepository) CountByTask(ctx context.Context, taskID uint, status model.AlertStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("task_id = ? AND status = ?", taskID, status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return count, nil
}

// ListByTasks returns the alerts of the given tasks with the parent task preloaded.
// A nil status matches every status.
func (r *AlertRepository) ListByTasks(ctx context.Context, taskIDs []uint, status *model.AlertStatus) ([]model.Alert, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Preload("Task").Where("task_id IN ?", taskIDs)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var alerts []model.Alert
	if err := query.Order("scheduled_for ASC, id ASC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// ListDue returns up to limit active alerts scheduled at or before now with an
// id above afterID, in id order. Callers page by passing the last id seen.
func (r *AlertRepository) ListDue(ctx context.Context, now time.Time, afterID uint, limit int) ([]model.Alert, error) {
	query := r.db.WithContext(ctx).Preload("Task").
		Where("status = ? AND scheduled_for <= ? AND id > ?", model.AlertActive, now.UTC(), afterID).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var alerts []model.Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("list due alerts: %w", err)
	}
	return alerts, nil
}

// DisableActive moves every active alert of taskID to disabled and reports how many changed.
func (r *AlertRepository) DisableActive(ctx context.Context, taskID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("task_id = ? AND status = ?", taskID, model.AlertActive).
		Update("status", model.AlertDisabled)
	if res.Error != nil {
		return 0, fmt.Errorf("disable alerts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// MarkFired moves an active alert to fired. It reports false when the alert
// was no longer active.
func (r *AlertRepository) MarkFired(ctx context.Context, alertID uint, firedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("id = ? AND status = ?", alertID, model.AlertActive).
		Updates(map[string]interface{}{
			"status":   model.AlertFired,
			"fired_at": firedAt.UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark alert fired: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *AlertRepository) DeleteByTask(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.Alert{}).Error; err != nil {
		return fmt.Errorf("delete alerts: %w", err)
	}
	return nil
}
