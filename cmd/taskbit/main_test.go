package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbit/internal/service"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLIEndToEnd(t *testing.T) {
	for _, key := range []string{"TELEGRAM_TOKEN", "DATABASE_URL", "TIMEZONE", "DISPATCH_INTERVAL_MINUTES", "NOTIFY_RATE_PER_SECOND"} {
		t.Setenv(key, "")
	}
	db := filepath.Join(t.TempDir(), "cli.db")
	due := time.Now().AddDate(0, 0, 10).Format("2006-01-02")

	out, err := runCLI(t, "--db", db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	out, err = runCLI(t, "--db", db, "user", "add", "ana@example.com", "--name", "Ana")
	require.NoError(t, err)
	assert.Contains(t, out, "registered")

	_, err = runCLI(t, "--db", db, "user", "add", "ANA@example.com")
	require.ErrorIs(t, err, service.ErrEmailInUse)

	out, err = runCLI(t, "--db", db, "task", "add", "Essay", "--as", "ana@example.com", "--due", due, "--priority", "high", "--course", "History")
	require.NoError(t, err)
	assert.Contains(t, out, "task 1 created")

	out, err = runCLI(t, "--db", db, "alert", "add", "1", "11", "days", "--as", "ana@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "alert 1 scheduled")

	out, err = runCLI(t, "--db", db, "task", "list", "--as", "ana@example.com", "--json")
	require.NoError(t, err)
	var tasks []service.TaskView
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Essay", tasks[0].Title)
	assert.Equal(t, due, tasks[0].DueDate)

	out, err = runCLI(t, "--db", db, "alert", "list", "--as", "ana@example.com", "--active")
	require.NoError(t, err)
	assert.Contains(t, out, "11 days")

	out, err = runCLI(t, "--db", db, "dispatch", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "--- to ana@example.com")
	assert.Contains(t, out, "delivered=1")

	out, err = runCLI(t, "--db", db, "alert", "list", "--as", "ana@example.com", "--active")
	require.NoError(t, err)
	assert.NotContains(t, out, "11 days")

	_, err = runCLI(t, "--db", db, "user", "disable", "ana@example.com")
	require.NoError(t, err)
	_, err = runCLI(t, "--db", db, "task", "list", "--as", "ana@example.com")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestCLIRequiresActingUser(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	_, err := runCLI(t, "--db", db, "task", "list")
	require.Error(t, err)
}

func TestDescribeErrorCollapsesOwnership(t *testing.T) {
	err := describeError(&service.Error{Kind: service.ErrNotOwner, Msg: "task 3"})
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, "not found: task 3", err.Error())

	err = describeError(errors.New("database is locked"))
	assert.Equal(t, "internal error", err.Error())
}
