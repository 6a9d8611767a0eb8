package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbit/internal/model"
	"taskbit/internal/service"
)

const (
	dateLayout    = "2006-01-02"
	instantLayout = "2006-01-02 15:04 UTC"
)

const (
	btnSkip          = "⏭️ Skip"
	btnClear         = "-"
	btnConfirm       = "✅ Confirm"
	btnCancel        = "↩️ Cancel"
	btnCancelDialog  = "⏪ Cancel input"
	iconDefault      = "🟢"
	iconDue          = "⏳"
	iconOverdue      = "⚠️"
	iconDone         = "✔️"
	menuLabelNewTask = "➕ New task"
	menuLabelTasks   = "📋 Tasks"
	menuLabelAlerts  = "🔔 Alerts"
	menuLabelHelp    = "ℹ️ Help"
)

const helpText = `<b>Tasks</b>
/newtask - create a task step by step
/tasks [status|priority|course] - list your tasks
/task 12 - show a task with its alerts
/edit 12 - edit a task
/status 12 in progress - change the status
/done 12 - mark a task completed
/delete 12 - delete a task
/courses - list your courses

<b>Alerts</b>
/alert 12 2 days - remind me 2 days before the due date
/alerts - all alerts
/active - active alerts
/taskalerts 12 - alerts of one task
/mute 12 - disable the alerts of a task

<b>Other</b>
/report - daily digest now
/email you@example.com - link an email
/cancel - stop the current dialog`

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelAlerts),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard(withClear bool) tgbotapi.ReplyKeyboardMarkup {
	row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip))
	if withClear {
		row = append(row, tgbotapi.NewKeyboardButton(btnClear))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard(withClear bool) tgbotapi.ReplyKeyboardMarkup {
	row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip))
	if withClear {
		row = append(row, tgbotapi.NewKeyboardButton(btnClear))
	}
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(model.PriorityHigh)),
			tgbotapi.NewKeyboardButton(string(model.PriorityMedium)),
			tgbotapi.NewKeyboardButton(string(model.PriorityLow)),
		),
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func taskActionsKeyboard(taskID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", fmt.Sprintf("%s%d", cbDonePrefix, taskID)),
			tgbotapi.NewInlineKeyboardButtonData("🔕 Mute", fmt.Sprintf("%s%d", cbMutePrefix, taskID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("%s%d", cbDeletePrefix, taskID)),
		),
	)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnSkip) || value == "skip"
}

func isClearInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == btnClear || value == "clear" || value == "none"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel input"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func dueIcon(task service.TaskView, now time.Time) string {
	if task.Status == model.StatusCompleted {
		return iconDone
	}
	if task.DueDate == "" {
		return iconDefault
	}
	due, err := time.Parse(dateLayout, task.DueDate)
	if err != nil {
		return iconDefault
	}
	today := service.DateOf(now)
	switch {
	case due.Before(today):
		return iconOverdue
	case due.Sub(today) <= 48*time.Hour:
		return iconDue
	default:
		return iconDefault
	}
}

// formatTaskLine renders one entry of a task list.
func formatTaskLine(task service.TaskView, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", dueIcon(task, now), task.ID, escape(task.Title)))
	if task.Course != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(task.Course)))
	}
	sb.WriteString(fmt.Sprintf("\n   %s", task.Status.Label()))
	if task.Priority != "" {
		sb.WriteString(fmt.Sprintf(" · %s", task.Priority))
	}
	if task.DueDate != "" {
		sb.WriteString(fmt.Sprintf(" · due %s", task.DueDate))
	}
	sb.WriteString("\n\n")
	return sb.String()
}

func formatTaskDetail(task service.TaskView, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>#%d %s</b>\n", dueIcon(task, now), task.ID, escape(task.Title)))
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("📝 %s\n", escape(task.Description)))
	}
	if task.Course != "" {
		sb.WriteString(fmt.Sprintf("📂 %s\n", escape(task.Course)))
	}
	if task.DueDate != "" {
		sb.WriteString(fmt.Sprintf("⏰ due %s\n", task.DueDate))
	}
	if task.Priority != "" {
		sb.WriteString(fmt.Sprintf("🎯 %s\n", task.Priority))
	}
	sb.WriteString(fmt.Sprintf("📌 %s\n", task.Status.Label()))
	if task.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("🏁 completed %s\n", task.CompletedAt.UTC().Format(instantLayout)))
	}
	return sb.String()
}

func formatAlertList(alerts []service.AlertView) string {
	if len(alerts) == 0 {
		return "🔕 No alerts."
	}
	var sb strings.Builder
	sb.WriteString("🔔 <b>Alerts</b>\n")
	for _, alert := range alerts {
		sb.WriteString(fmt.Sprintf("• #%d %s · %s before · %s · %s\n",
			alert.ID,
			escape(shortTitle(alert.TaskTitle, 32)),
			escape(alert.LeadTime),
			alert.ScheduledFor.UTC().Format(instantLayout),
			alert.Status))
	}
	return strings.TrimSpace(sb.String())
}
