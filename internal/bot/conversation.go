package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbit/internal/model"
	"taskbit/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCourse
	stageDueDate
	stagePriority
)

// conversationState collects a task step by step. A non-zero taskID means the
// dialog edits that task and input starts from its current values.
type conversationState struct {
	stage  conversationStage
	taskID uint
	input  service.TaskInput
}

func (s *conversationState) editing() bool { return s.taskID != 0 }

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) startEditConversation(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, _ string) error {
		task, err := b.svc.Tasks.GetTask(ctx, taskID, user.ID)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}

		state := &conversationState{stage: stageTitle, taskID: task.ID, input: inputFromView(*task)}
		b.setConversation(msg.From.ID, state)
		log.Printf("[info] start edit conversation user=%d task=%d", msg.From.ID, task.ID)

		text := fmt.Sprintf("✏️ Editing task #%d.\n<b>Title:</b> %s\nSend a new title or press «%s» to keep it.",
			task.ID, escape(task.Title), btnSkip)
		return b.sendWithReplyMarkup(msg.Chat.ID, text, skipKeyboard(false))
	})
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	editing := state.editing()
	switch state.stage {
	case stageTitle:
		if !(editing && isSkipInput(text)) {
			if text == "" || isSkipInput(text) || isClearInput(text) {
				return b.sendWithReplyMarkup(msg.Chat.ID, "A task needs a title. What should it be called?", cancelKeyboard())
			}
			state.input.Title = text
		}
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, b.fieldPrompt("📝 Add a short description", state.input.Description, editing), skipKeyboard(editing))
	case stageDescription:
		state.input.Description = applyOptional(state.input.Description, text, editing)
		state.stage = stageCourse
		return b.sendWithReplyMarkup(msg.Chat.ID, b.fieldPrompt("📂 Which course is it for?", state.input.Course, editing), skipKeyboard(editing))
	case stageCourse:
		state.input.Course = applyOptional(state.input.Course, text, editing)
		state.stage = stageDueDate
		return b.askDueDate(msg.Chat.ID, state)
	case stageDueDate:
		switch {
		case isSkipInput(text) && editing:
		case isSkipInput(text) || isClearInput(text):
			state.input.DueDate = nil
		default:
			parsed, err := time.Parse(dateLayout, text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2025-11-30</code>.", skipKeyboard(editing))
			}
			state.input.DueDate = &parsed
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, b.fieldPrompt("🎯 Priority: high, medium or low?", state.input.Priority, editing), priorityKeyboard(editing))
	case stagePriority:
		next := applyOptional(state.input.Priority, text, editing)
		if next != nil {
			if _, err := model.ParsePriority(*next); err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Priority must be high, medium or low.", priorityKeyboard(editing))
			}
		}
		state.input.Priority = next
		return b.finishConversation(ctx, msg, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Try again with /newtask.")
	}
}

func (b *Bot) finishConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		b.clearConversation(msg.From.ID)
		return b.replyError(msg.Chat.ID, err)
	}

	var task *service.TaskView
	if state.editing() {
		task, err = b.svc.Tasks.UpdateTask(ctx, state.taskID, user.ID, state.input)
	} else {
		task, err = b.svc.Tasks.CreateTask(ctx, user.ID, state.input)
	}
	if errors.Is(err, service.ErrInvalidDueDate) {
		state.stage = stageDueDate
		if sendErr := b.sendText(msg.Chat.ID, describeError(err)); sendErr != nil {
			return sendErr
		}
		return b.askDueDate(msg.Chat.ID, state)
	}
	b.clearConversation(msg.From.ID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	verb := "created"
	if state.editing() {
		verb = "updated"
	}
	text := fmt.Sprintf("✅ Task %s.\n\n%s\nAdd a reminder with <code>/alert %d 1 day</code>.", verb, formatTaskDetail(*task, b.clock.Now()), task.ID)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) askDueDate(chatID int64, state *conversationState) error {
	var current *string
	if state.input.DueDate != nil {
		formatted := state.input.DueDate.Format(dateLayout)
		current = &formatted
	}
	prompt := b.fieldPrompt("⏰ Due date as <code>2025-11-30</code>? It must be after today.", current, state.editing())
	return b.sendWithReplyMarkup(chatID, prompt, skipKeyboard(state.editing()))
}

func (b *Bot) fieldPrompt(question string, current *string, editing bool) string {
	if !editing {
		return fmt.Sprintf("%s (or «%s»)", question, btnSkip)
	}
	value := "none"
	if current != nil && strings.TrimSpace(*current) != "" {
		value = escape(*current)
	}
	return fmt.Sprintf("%s\nCurrent: %s\n«%s» keeps it, «%s» clears it.", question, value, btnSkip, btnClear)
}

// applyOptional resolves the answer for an optional field. Skip keeps the
// current value while editing and leaves it empty otherwise; clear always empties it.
func applyOptional(current *string, text string, editing bool) *string {
	switch {
	case isSkipInput(text):
		if editing {
			return current
		}
		return nil
	case isClearInput(text), text == "":
		return nil
	default:
		value := text
		return &value
	}
}

func inputFromView(task service.TaskView) service.TaskInput {
	input := service.TaskInput{Title: task.Title}
	if task.Description != "" {
		description := task.Description
		input.Description = &description
	}
	if task.Course != "" {
		course := task.Course
		input.Course = &course
	}
	if task.Priority != "" {
		priority := string(task.Priority)
		input.Priority = &priority
	}
	if task.DueDate != "" {
		if due, err := time.Parse(dateLayout, task.DueDate); err == nil {
			input.DueDate = &due
		}
	}
	return input
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.conversations[userID]
	return ok && state != nil && state.stage != stageNone
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
