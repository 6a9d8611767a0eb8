package service

import (
	"time"

	"taskbit/internal/model"
)

const dateLayout = "2006-01-02"

// TaskView is the externally visible shape of a task.
type TaskView struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	DueDate     string           `json:"dueDate,omitempty"`
	Priority    model.Priority   `json:"priority,omitempty"`
	Course      string           `json:"course,omitempty"`
	Status      model.TaskStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

// AlertView is the externally visible shape of an alert.
type AlertView struct {
	ID           uint              `json:"id"`
	TaskID       uint              `json:"taskId"`
	TaskTitle    string            `json:"taskTitle,omitempty"`
	LeadTime     string            `json:"leadTime"`
	ScheduledFor time.Time         `json:"scheduledFor"`
	Status       model.AlertStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	FiredAt      *time.Time        `json:"firedAt,omitempty"`
}

func ProjectTask(task *model.Task) TaskView {
	view := TaskView{
		ID:          task.ID,
		Title:       task.Title,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
	}
	if task.Description != nil {
		view.Description = *task.Description
	}
	if task.DueDate != nil {
		view.DueDate = task.DueDate.UTC().Format(dateLayout)
	}
	if task.Priority != nil {
		view.Priority = *task.Priority
	}
	if task.Course != nil {
		view.Course = *task.Course
	}
	return view
}

func ProjectTasks(tasks []model.Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, ProjectTask(&tasks[i]))
	}
	return views
}

// ProjectAlert maps an alert; the task title is filled when the task is loaded.
func ProjectAlert(alert *model.Alert) AlertView {
	view := AlertView{
		ID:           alert.ID,
		TaskID:       alert.TaskID,
		LeadTime:     alert.LeadTime,
		ScheduledFor: alert.ScheduledFor.UTC(),
		Status:       alert.Status,
		CreatedAt:    alert.CreatedAt,
		FiredAt:      alert.FiredAt,
	}
	if alert.Task != nil {
		view.TaskTitle = alert.Task.Title
	}
	return view
}

func ProjectAlerts(alerts []model.Alert) []AlertView {
	views := make([]AlertView, 0, len(alerts))
	for i := range alerts {
		views = append(views, ProjectAlert(&alerts[i]))
	}
	return views
}
