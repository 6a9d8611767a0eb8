package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

var taskStatusNames = map[string]TaskStatus{
	"pending":     StatusPending,
	"pendiente":   StatusPending,
	"in progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"en progreso": StatusInProgress,
	"completed":   StatusCompleted,
	"completada":  StatusCompleted,
}

// ParseTaskStatus accepts the English and Spanish status names in any case.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if status, ok := taskStatusNames[key]; ok {
		return status, nil
	}
	return "", fmt.Errorf("unknown task status %q", raw)
}

// Label returns the human readable status name.
func (s TaskStatus) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Pending"
	}
}

// Priority is the optional urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityNames = map[string]Priority{
	"high":   PriorityHigh,
	"alta":   PriorityHigh,
	"medium": PriorityMedium,
	"media":  PriorityMedium,
	"low":    PriorityLow,
	"baja":   PriorityLow,
}

// ParsePriority lowercases the input and maps it onto high, medium or low.
func ParsePriority(raw string) (Priority, error) {
	if p, ok := priorityNames[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// Task represents a single item owned by a user.
type Task struct {
	ID          uint       `gorm:"primaryKey"`
	UserID      uint       `gorm:"index;not null"`
	Title       string     `gorm:"size:200;not null"`
	Description *string
	DueDate     *time.Time
	Priority    *Priority  `gorm:"size:10"`
	Course      *string    `gorm:"size:100"`
	Status      TaskStatus `gorm:"size:20;not null;default:pending"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// TransitionTo moves the task into status and keeps CompletedAt consistent with it.
// Re-entering Completed keeps the original completion instant.
func (t *Task) TransitionTo(status TaskStatus, now time.Time) {
	switch {
	case status == StatusCompleted:
		if t.CompletedAt == nil {
			completedAt := now
			t.CompletedAt = &completedAt
		}
	case t.Status == StatusCompleted:
		t.CompletedAt = nil
	}
	t.Status = status
}
