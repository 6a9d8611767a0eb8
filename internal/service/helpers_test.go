package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskbit/internal/model"
	"taskbit/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return repository.NewStore(db)
}

func newTestUser(t *testing.T, store *repository.Store, email string) *model.User {
	t.Helper()
	user := &model.User{Email: &email, Name: email, Enabled: true}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func strPtr(s string) *string { return &s }

type fixture struct {
	store  *repository.Store
	clock  *fakeClock
	tasks  *TaskService
	alerts *AlertService
	alice  *model.User
	bob    *model.User
}

// newFixture starts on 2025-03-01 10:00 UTC with two users.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore(t)
	clock := &fakeClock{now: time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)}
	return &fixture{
		store:  store,
		clock:  clock,
		tasks:  NewTaskService(store, clock),
		alerts: NewAlertService(store, clock),
		alice:  newTestUser(t, store, "alice@example.com"),
		bob:    newTestUser(t, store, "bob@example.com"),
	}
}

func (f *fixture) createTask(t *testing.T, owner *model.User, title string, due *time.Time) *TaskView {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), owner.ID, TaskInput{Title: title, DueDate: due})
	require.NoError(t, err)
	return task
}
