package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbit/internal/model"
	"taskbit/internal/repository"
	"taskbit/internal/service"
)

type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type harness struct {
	bot   *Bot
	api   *fakeAPI
	svc   Services
	store *repository.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repository.NewStore(db)
	clock := service.ClockFunc(func() time.Time {
		return time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	})
	svc := Services{
		Identity:  service.NewIdentityService(store),
		Tasks:     service.NewTaskService(store, clock),
		Alerts:    service.NewAlertService(store, clock),
		Courses:   service.NewCourseService(store),
		Reminders: service.NewReminderService(store),
	}
	api := &fakeAPI{}
	return &harness{bot: NewWithAPI(api, svc, clock), api: api, svc: svc, store: store}
}

func (h *harness) say(userID int64, text string) {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Sam"},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (h *harness) click(userID int64, data string) {
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID, FirstName: "Sam"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID, Type: "private"}},
		Data:    data,
	}})
}

func (h *harness) user(t *testing.T, telegramID int64) *model.User {
	t.Helper()
	user, err := h.svc.Identity.ResolveTelegram(context.Background(), telegramID, "Sam")
	require.NoError(t, err)
	return user
}

func TestNewTaskConversation(t *testing.T) {
	h := newHarness(t)

	h.say(42, "/newtask")
	assert.Contains(t, h.api.last(t).Text, "Step 1")
	h.say(42, "Essay on Rome")
	h.say(42, btnSkip)
	h.say(42, "History")
	h.say(42, "2025-03-10")
	h.say(42, "high")

	assert.Contains(t, h.api.last(t).Text, "Task created")

	tasks, err := h.svc.Tasks.ListTasks(context.Background(), h.user(t, 42).ID, service.TaskQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Essay on Rome", tasks[0].Title)
	assert.Empty(t, tasks[0].Description)
	assert.Equal(t, "History", tasks[0].Course)
	assert.Equal(t, "2025-03-10", tasks[0].DueDate)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
}

func TestNewTaskConversationAsksAgainForPastDueDate(t *testing.T) {
	h := newHarness(t)

	h.say(42, "/newtask")
	h.say(42, "Quiz")
	h.say(42, "skip")
	h.say(42, "skip")
	h.say(42, "2025-03-01")
	h.say(42, "low")

	h.api.mu.Lock()
	var texts []string
	for _, msg := range h.api.sent {
		texts = append(texts, msg.Text)
	}
	h.api.mu.Unlock()
	assert.Contains(t, strings.Join(texts, "\n"), "The due date must be after today.")
	assert.Contains(t, h.api.last(t).Text, "Due date")

	h.say(42, "2025-03-04")
	h.say(42, "low")
	assert.Contains(t, h.api.last(t).Text, "Task created")
}

func TestEditConversationKeepsSkippedFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.user(t, 7)
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	course := "Math"
	task, err := h.svc.Tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "Homework", DueDate: &due, Course: &course})
	require.NoError(t, err)

	h.say(7, fmt.Sprintf("/edit %d", task.ID))
	h.say(7, btnSkip)
	h.say(7, "chapter 3")
	h.say(7, btnClear)
	h.say(7, btnSkip)
	h.say(7, "medium")
	assert.Contains(t, h.api.last(t).Text, "Task updated")

	updated, err := h.svc.Tasks.GetTask(ctx, task.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Homework", updated.Title)
	assert.Equal(t, "chapter 3", updated.Description)
	assert.Empty(t, updated.Course)
	assert.Equal(t, "2025-03-10", updated.DueDate)
	assert.Equal(t, model.PriorityMedium, updated.Priority)
}

func TestAlertAndDeleteFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.user(t, 5)
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	task, err := h.svc.Tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "Exam", DueDate: &due})
	require.NoError(t, err)

	h.say(5, fmt.Sprintf("/alert %d 2 days", task.ID))
	assert.Contains(t, h.api.last(t).Text, "2025-03-08 00:00 UTC")

	h.say(5, fmt.Sprintf("/alert %d 2 DAYS", task.ID))
	assert.Equal(t, "This task already has an alert with that lead time.", h.api.last(t).Text)

	h.say(5, fmt.Sprintf("/alert %d soon", task.ID))
	assert.Contains(t, h.api.last(t).Text, "24 hours")

	h.say(5, fmt.Sprintf("/delete %d", task.ID))
	assert.Contains(t, h.api.last(t).Text, "Delete task")
	h.say(5, btnConfirm)

	prompt := h.api.last(t)
	assert.Contains(t, prompt.Text, "still has active alerts")
	markup, ok := prompt.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, fmt.Sprintf("%s%d", cbForceDelPrefix, task.ID), *markup.InlineKeyboard[0][0].CallbackData)

	_, err = h.svc.Tasks.GetTask(ctx, task.ID, user.ID)
	require.NoError(t, err, "task survives the refused delete")

	h.click(5, *markup.InlineKeyboard[0][0].CallbackData)
	assert.Contains(t, h.api.last(t).Text, "deleted")

	_, err = h.svc.Tasks.GetTask(ctx, task.ID, user.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestForeignTaskLooksMissing(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t, 1)
	task, err := h.svc.Tasks.CreateTask(context.Background(), owner.ID, service.TaskInput{Title: "secret"})
	require.NoError(t, err)

	h.say(2, fmt.Sprintf("/task %d", task.ID))
	assert.Equal(t, "Task not found.", h.api.last(t).Text)

	h.say(2, "/task 999")
	assert.Equal(t, "Task not found.", h.api.last(t).Text)

	h.click(2, fmt.Sprintf("%s%d", cbDonePrefix, task.ID))
	assert.Equal(t, "Task not found.", h.api.last(t).Text)
}

func TestStatusCommand(t *testing.T) {
	h := newHarness(t)
	user := h.user(t, 3)
	task, err := h.svc.Tasks.CreateTask(context.Background(), user.ID, service.TaskInput{Title: "Read"})
	require.NoError(t, err)

	h.say(3, fmt.Sprintf("/status %d en progreso", task.ID))
	assert.Contains(t, h.api.last(t).Text, "In progress")

	h.say(3, fmt.Sprintf("/status %d archived", task.ID))
	assert.Equal(t, "Status must be pending, in progress or completed.", h.api.last(t).Text)

	h.say(3, "/status abc")
	assert.Contains(t, h.api.last(t).Text, "positive integer")
}

func TestNotify(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.bot.Notify(ctx, &model.User{ID: 1}, "hello")
	require.ErrorIs(t, err, service.ErrNoRecipient)

	chatID := int64(99)
	require.NoError(t, h.bot.Notify(ctx, &model.User{ID: 1, TelegramID: &chatID}, "hello"))
	last := h.api.last(t)
	assert.Equal(t, chatID, last.ChatID)
	assert.Equal(t, "hello", last.Text)
}

func TestSendDigests(t *testing.T) {
	h := newHarness(t)
	user := h.user(t, 11)
	_, err := h.svc.Tasks.CreateTask(context.Background(), user.ID, service.TaskInput{Title: "Lab"})
	require.NoError(t, err)

	require.NoError(t, h.bot.SendDigests(context.Background()))
	last := h.api.last(t)
	assert.Equal(t, int64(11), last.ChatID)
	assert.Contains(t, last.Text, "Daily digest")
	assert.Contains(t, last.Text, "Lab")
}

func TestDescribeErrorHidesInternals(t *testing.T) {
	assert.Equal(t, "Something went wrong. Please try again later.", describeError(fmt.Errorf("disk on fire")))
	assert.Equal(t, "Task not found.", describeError(&service.Error{Kind: service.ErrNotOwner, Msg: "task 1"}))
	assert.Equal(t, "Task not found.", describeError(&service.Error{Kind: service.ErrNotFound, Msg: "task 1"}))
	assert.Contains(t, describeError(&service.Error{Kind: service.ErrNotFound, Msg: "user 3"}), "account is disabled")
}

func TestDisabledUserIsToldAboutTheirAccount(t *testing.T) {
	h := newHarness(t)
	user := h.user(t, 77)
	require.NoError(t, h.store.Users.SetEnabled(context.Background(), user, false))

	for _, cmd := range []string{"/start", "/tasks", "/courses"} {
		h.say(77, cmd)
		text := h.api.last(t).Text
		assert.Contains(t, text, "account is disabled", cmd)
		assert.NotContains(t, text, "Task not found", cmd)
	}
}

func TestParseTaskQuery(t *testing.T) {
	query, err := parseTaskQuery("alta")
	require.NoError(t, err)
	assert.Equal(t, service.TaskQuery{Priority: "alta"}, query)

	query, err = parseTaskQuery("in progress")
	require.NoError(t, err)
	assert.Equal(t, service.TaskQuery{Status: "in progress"}, query)

	query, err = parseTaskQuery("Physics")
	require.NoError(t, err)
	assert.Equal(t, service.TaskQuery{Course: "Physics"}, query)
}
