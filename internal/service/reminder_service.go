package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"taskbit/internal/model"
	"taskbit/internal/repository"
)

// ReminderService builds human-readable reminder and digest messages (Telegram HTML).
type ReminderService struct {
	store *repository.Store
}

func NewReminderService(store *repository.Store) *ReminderService {
	return &ReminderService{store: store}
}

// AlertText renders the message sent when alert fires.
func (s *ReminderService) AlertText(alert *model.Alert, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("🔔 <b>Reminder</b>\n")
	if alert.Task != nil {
		sb.WriteString(formatTask(*alert.Task, now))
	}
	sb.WriteString(fmt.Sprintf("   ⏱ %s before the due date", html.EscapeString(alert.LeadTime)))
	return sb.String()
}

// Digest summarizes the open tasks and upcoming alerts of userID.
func (s *ReminderService) Digest(ctx context.Context, userID uint, now time.Time) (string, error) {
	user, err := requireUser(ctx, s.store, userID)
	if err != nil {
		return "", err
	}
	tasks, err := s.store.Tasks.ListByUser(ctx, user.ID, repository.TaskFilter{})
	if err != nil {
		return "", err
	}
	taskIDs := make([]uint, 0, len(tasks))
	var open []model.Task
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
		if task.Status != model.StatusCompleted {
			open = append(open, task)
		}
	}
	active := model.AlertActive
	alerts, err := s.store.Alerts.ListByTasks(ctx, taskIDs, &active)
	if err != nil {
		return "", err
	}

	sort.SliceStable(open, func(i, j int) bool {
		switch {
		case open[i].DueDate == nil && open[j].DueDate == nil:
			return open[i].CreatedAt.After(open[j].CreatedAt)
		case open[i].DueDate == nil:
			return false
		case open[j].DueDate == nil:
			return true
		default:
			return open[i].DueDate.Before(*open[j].DueDate)
		}
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format(dateLayout)))

	builder.WriteString("🔥 <b>Open tasks</b>\n")
	if len(open) == 0 {
		builder.WriteString("· nothing open\n")
	} else {
		for _, task := range open {
			builder.WriteString(formatTask(task, now))
		}
	}

	builder.WriteString("\n🔔 <b>Upcoming alerts</b>\n")
	if len(alerts) == 0 {
		builder.WriteString("· no active alerts\n")
	} else {
		for _, alert := range alerts {
			title := ""
			if alert.Task != nil {
				title = alert.Task.Title
			}
			builder.WriteString(fmt.Sprintf("• %s · %s (%s)\n",
				alert.ScheduledFor.UTC().Format("2006-01-02 15:04 UTC"),
				html.EscapeString(title),
				html.EscapeString(alert.LeadTime)))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	today := DateOf(now)
	if task.DueDate != nil {
		due := DateOf(*task.DueDate)
		switch {
		case due.Before(today):
			icon = "⚠️"
		case due.Sub(today) <= 48*time.Hour:
			icon = "⏳"
		}
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", icon, task.ID, title))

	if task.Course != nil {
		if trimmed := strings.TrimSpace(*task.Course); trimmed != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
		}
	}
	if task.Priority != nil {
		sb.WriteString(fmt.Sprintf(" [%s]", *task.Priority))
	}

	if task.DueDate != nil {
		due := DateOf(*task.DueDate)
		if due.Before(today) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · <b>overdue</b>", due.Format(dateLayout)))
		} else {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · %s", due.Format(dateLayout), daysLeft(today, due)))
		}
	}

	if task.Description != nil && *task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(*task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func daysLeft(today, due time.Time) string {
	switch days := int(due.Sub(today).Hours() / 24); days {
	case 0:
		return "<b>due today</b>"
	case 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
