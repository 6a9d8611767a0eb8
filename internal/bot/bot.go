package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskbit/internal/model"
	"taskbit/internal/service"
)

const (
	cbDonePrefix     = "done:"
	cbDeletePrefix   = "delete:"
	cbForceDelPrefix = "forcedel:"
	cbMutePrefix     = "mute:"
	cbListTasks      = "list:tasks"
)

type confirmationRequest struct {
	taskID uint
}

// TelegramAPI is the subset of tgbotapi.BotAPI the bot uses.
type TelegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services bundles the core services the bot talks to.
type Services struct {
	Identity  *service.IdentityService
	Tasks     *service.TaskService
	Alerts    *service.AlertService
	Courses   *service.CourseService
	Reminders *service.ReminderService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           TelegramAPI
	svc           Services
	clock         service.Clock
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, svc Services, clock service.Clock) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return NewWithAPI(api, svc, clock), nil
}

// NewWithAPI builds a bot on top of an existing API client.
func NewWithAPI(api TelegramAPI, svc Services, clock service.Clock) *Bot {
	return &Bot{
		api:           api,
		svc:           svc,
		clock:         clock,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.HandleUpdate(ctx, update)
	}

	return ctx.Err()
}

// HandleUpdate dispatches a single update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

// Notify sends a reminder to the user's chat.
func (b *Bot) Notify(ctx context.Context, user *model.User, text string) error {
	if user == nil || user.TelegramID == nil {
		return service.ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(*user.TelegramID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Tasks", cbListTasks),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

// SendDigests sends the daily digest to every reachable user.
func (b *Bot) SendDigests(ctx context.Context) error {
	users, err := b.svc.Identity.Reachable(ctx)
	if err != nil {
		return err
	}
	now := b.clock.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.svc.Reminders.Digest(ctx, user.ID, now)
		if err != nil {
			log.Printf("build digest for user %d: %v", user.ID, err)
			continue
		}
		if err := b.sendText(*user.TelegramID, text); err != nil {
			log.Printf("send digest to %d: %v", *user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not understand that. Send /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "email":
		return b.handleEmail(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "edit":
		return b.startEditConversation(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "task":
		return b.handleShowTask(ctx, msg)
	case "status":
		return b.handleStatus(ctx, msg)
	case "done":
		return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, _ string) error {
			return b.completeTask(ctx, msg.Chat.ID, user, taskID)
		})
	case "alert":
		return b.handleCreateAlert(ctx, msg)
	case "alerts":
		return b.handleListAlerts(ctx, msg, false)
	case "active":
		return b.handleListAlerts(ctx, msg, true)
	case "taskalerts":
		return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, _ string) error {
			return b.sendTaskAlerts(ctx, msg.Chat.ID, user, taskID)
		})
	case "mute":
		return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, _ string) error {
			return b.muteTask(ctx, msg.Chat.ID, user, taskID)
		})
	case "delete":
		return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, _ string) error {
			return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From.ID, user, taskID)
		})
	case "courses":
		return b.handleCourses(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Hi, %s!\n<b>I keep track of your tasks and remind you before they are due.</b>\n\n%s", escape(name), helpText))
}

func (b *Bot) handleEmail(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		current := "not linked"
		if user.Email != nil {
			current = *user.Email
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Linked email: %s. Send /email you@example.com to change it.", escape(current)))
	}
	if err := b.svc.Identity.LinkEmail(ctx, user, args); err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📧 Email linked: %s", escape(*user.Email)))
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	query, err := parseTaskQuery(msg.CommandArguments())
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendTaskList(ctx, msg.Chat.ID, user, query)
}

func (b *Bot) handleShowTask(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, _ string) error {
		task, err := b.svc.Tasks.GetTask(ctx, taskID, user.ID)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}
		alerts, err := b.svc.Alerts.ListTaskAlerts(ctx, taskID, user.ID)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}

		var sb strings.Builder
		sb.WriteString(formatTaskDetail(*task, b.clock.Now()))
		sb.WriteString("\n")
		sb.WriteString(formatAlertList(alerts))

		out := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(sb.String()))
		out.ParseMode = tgbotapi.ModeHTML
		out.ReplyMarkup = taskActionsKeyboard(task.ID)
		_, err = b.api.Send(out)
		return err
	})
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, rest string) error {
		if rest == "" {
			return b.sendText(msg.Chat.ID, "Tell me the new status: /status 3 in progress")
		}
		task, err := b.svc.Tasks.UpdateTaskStatus(ctx, taskID, user.ID, rest)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🔄 «%s» is now <b>%s</b>.", escape(task.Title), task.Status.Label()))
	})
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	task, err := b.svc.Tasks.UpdateTaskStatus(ctx, taskID, user.ID, string(model.StatusCompleted))
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ «%s» completed.", escape(task.Title)))
}

func (b *Bot) handleCreateAlert(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withTaskID(ctx, msg, func(user *model.User, taskID uint, rest string) error {
		alert, err := b.svc.Alerts.CreateAlert(ctx, taskID, user.ID, rest)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🔔 Alert #%d for «%s»: %s before, at %s.",
			alert.ID, escape(alert.TaskTitle), escape(alert.LeadTime), alert.ScheduledFor.Format(instantLayout)))
	})
}

func (b *Bot) handleListAlerts(ctx context.Context, msg *tgbotapi.Message, activeOnly bool) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	var alerts []service.AlertView
	if activeOnly {
		alerts, err = b.svc.Alerts.ListActiveAlerts(ctx, user.ID)
	} else {
		alerts, err = b.svc.Alerts.ListAlerts(ctx, user.ID)
	}
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, formatAlertList(alerts))
}

func (b *Bot) sendTaskAlerts(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	alerts, err := b.svc.Alerts.ListTaskAlerts(ctx, taskID, user.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatAlertList(alerts))
}

func (b *Bot) muteTask(ctx context.Context, chatID int64, user *model.User, taskID uint) error {
	if err := b.svc.Tasks.DeactivateTaskAlerts(ctx, taskID, user.ID); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🔕 Alerts of task #%d disabled.", taskID))
}

func (b *Bot) handleCourses(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	courses, err := b.svc.Courses.List(ctx, user.ID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(courses) == 0 {
		return b.sendText(msg.Chat.ID, "No courses yet. Add one when you create a task.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Courses</b>\n")
	for _, course := range courses {
		builder.WriteString(fmt.Sprintf("• %s\n", escape(course)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	text, err := b.svc.Reminders.Digest(ctx, user.ID, b.clock.Now())
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, fromID int64, user *model.User, taskID uint) error {
	task, err := b.svc.Tasks.GetTask(ctx, taskID, user.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	b.setConfirmation(fromID, confirmationRequest{taskID: task.ID})
	text := fmt.Sprintf("Delete task «%s» (#%d)?", escape(task.Title), task.ID)
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}
		return b.deleteTask(ctx, msg.Chat.ID, user, req.taskID, service.DeleteOptions{})
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Nothing deleted.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, user *model.User, taskID uint, opts service.DeleteOptions) error {
	err := b.svc.Tasks.DeleteTask(ctx, taskID, user.ID, opts)
	if errors.Is(err, service.ErrTaskHasActiveAlerts) {
		msg := tgbotapi.NewMessage(chatID, "This task still has active alerts. Disable them and delete the task?")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔕 Disable alerts and delete", fmt.Sprintf("%s%d", cbForceDelPrefix, taskID)),
			),
		)
		_, sendErr := b.api.Send(msg)
		return sendErr
	}
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Task #%d deleted.", taskID))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	log.Printf("[info] callback user=%d data=%s", cb.From.ID, cb.Data)
	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		return b.replyError(cb.Message.Chat.ID, err)
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == cbListTasks:
		return b.sendTaskList(ctx, chatID, user, service.TaskQuery{})
	case strings.HasPrefix(cb.Data, cbDonePrefix):
		if taskID, err := parseID(strings.TrimPrefix(cb.Data, cbDonePrefix)); err == nil {
			return b.completeTask(ctx, chatID, user, taskID)
		}
	case strings.HasPrefix(cb.Data, cbMutePrefix):
		if taskID, err := parseID(strings.TrimPrefix(cb.Data, cbMutePrefix)); err == nil {
			return b.muteTask(ctx, chatID, user, taskID)
		}
	case strings.HasPrefix(cb.Data, cbDeletePrefix):
		if taskID, err := parseID(strings.TrimPrefix(cb.Data, cbDeletePrefix)); err == nil {
			return b.askDeleteConfirmation(ctx, chatID, cb.From.ID, user, taskID)
		}
	case strings.HasPrefix(cb.Data, cbForceDelPrefix):
		if taskID, err := parseID(strings.TrimPrefix(cb.Data, cbForceDelPrefix)); err == nil {
			return b.deleteTask(ctx, chatID, user, taskID, service.DeleteOptions{DisableAlerts: true})
		}
	}
	return nil
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, user *model.User, query service.TaskQuery) error {
	tasks, err := b.svc.Tasks.ListTasks(ctx, user.ID, query)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks here. Add one with /newtask.")
	}

	now := b.clock.Now()
	var builder strings.Builder
	builder.WriteString("📋 <b>Your tasks</b>\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(formatTaskLine(task, now))
		if task.Status != model.StatusCompleted {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, 24)), fmt.Sprintf("%s%d", cbDonePrefix, task.ID)),
			))
		}
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err = b.api.Send(msg)
	return err
}

// withTaskID parses "<id> [rest]" from the command arguments and resolves the sender.
func (b *Bot) withTaskID(ctx context.Context, msg *tgbotapi.Message, fn func(user *model.User, taskID uint, rest string) error) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Tell me the task number: /%s 12", msg.Command()))
	}
	taskID, err := parseID(args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task number must be a positive integer.")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return fn(user, taskID, strings.Join(args[1:], " "))
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.UserName
	}
	return b.svc.Identity.ResolveTelegram(ctx, from.ID, name)
}

// replyError turns err into a user-facing message. Unclassified errors are
// logged and reported without detail.
func (b *Bot) replyError(chatID int64, err error) error {
	if !service.IsBusiness(err) {
		log.Printf("[error] chat=%d: %v", chatID, err)
	}
	return b.sendText(chatID, describeError(err))
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelAlerts):
		return true, b.handleListAlerts(ctx, msg, true)
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func describeError(err error) string {
	switch {
	case service.IsUserNotFound(err):
		return "Your account is disabled or unknown. Ask the administrator to enable it."
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotOwner):
		return "Task not found."
	case errors.Is(err, service.ErrMissingRequiredField):
		var e *service.Error
		if errors.As(err, &e) && e.Msg != "" {
			return "Missing or invalid value: " + escape(e.Msg) + "."
		}
		return "A required value is missing."
	case errors.Is(err, service.ErrInvalidDueDate):
		return "The due date must be after today."
	case errors.Is(err, service.ErrInvalidPriority):
		return "Priority must be high, medium or low."
	case errors.Is(err, service.ErrInvalidStatus):
		return "Status must be pending, in progress or completed."
	case errors.Is(err, service.ErrMissingDueDate):
		return "This task has no due date. Set one with /edit before adding alerts."
	case errors.Is(err, service.ErrTaskExpired):
		return "This task is already past its due date."
	case errors.Is(err, service.ErrMissingLeadTime):
		return "Tell me how long before the due date, e.g. /alert 3 24 hours"
	case errors.Is(err, service.ErrInvalidLeadTime):
		return "Use a lead time like <code>24 hours</code> or <code>2 days</code>."
	case errors.Is(err, service.ErrDuplicateAlert):
		return "This task already has an alert with that lead time."
	case errors.Is(err, service.ErrTaskHasActiveAlerts):
		return "This task still has active alerts. Disable them with /mute first."
	case errors.Is(err, service.ErrEmailInUse):
		return "That email is already linked to another account."
	default:
		return "Something went wrong. Please try again later."
	}
}

func parseTaskQuery(args string) (service.TaskQuery, error) {
	var query service.TaskQuery
	args = strings.TrimSpace(args)
	if args == "" {
		return query, nil
	}
	if _, err := model.ParsePriority(args); err == nil {
		query.Priority = args
		return query, nil
	}
	if _, err := model.ParseTaskStatus(args); err == nil {
		query.Status = args
		return query, nil
	}
	query.Course = args
	return query, nil
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return uint(value), nil
}
