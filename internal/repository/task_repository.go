package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"taskbit/internal/model"
)

// TaskFilter narrows a task listing. Zero values match everything.
type TaskFilter struct {
	Status   *model.TaskStatus
	Priority *model.Priority
	Course   string
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// FindByID loads a task regardless of its owner; callers check ownership.
func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID uint, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if course := strings.TrimSpace(filter.Course); course != "" {
		query = query.Where("LOWER(course) = ?", strings.ToLower(course))
	}

	var tasks []model.Task
	if err := query.Order("due_date IS NULL, due_date ASC, created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListIDsByUser returns the ids of every task owned by userID.
func (r *TaskRepository) ListIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("user_id = ?", userID).
		Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	return ids, nil
}

// ListCourses returns the distinct non-empty course labels of userID's tasks.
func (r *TaskRepository) ListCourses(ctx context.Context, userID uint) ([]string, error) {
	var courses []string
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND course IS NOT NULL AND TRIM(course) <> ''", userID).
		Distinct().Pluck("course", &courses).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (r *TaskRepository) Delete(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Delete(task).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
