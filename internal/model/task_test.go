package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	cases := map[string]TaskStatus{
		"pending":       StatusPending,
		"  PENDING ":    StatusPending,
		"Pendiente":     StatusPending,
		"in progress":   StatusInProgress,
		"In   Progress": StatusInProgress,
		"in_progress":   StatusInProgress,
		"en progreso":   StatusInProgress,
		"completed":     StatusCompleted,
		"Completada":    StatusCompleted,
	}
	for raw, want := range cases {
		got, err := ParseTaskStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "done", "inprogress", "completed!"} {
		_, err := ParseTaskStatus(raw)
		assert.Error(t, err, raw)
	}
}

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{
		"high":   PriorityHigh,
		" HIGH ": PriorityHigh,
		"Alta":   PriorityHigh,
		"medium": PriorityMedium,
		"media":  PriorityMedium,
		"low":    PriorityLow,
		"baja":   PriorityLow,
	}
	for raw, want := range cases {
		got, err := ParsePriority(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}

func TestTransitionToKeepsCompletedAtConsistent(t *testing.T) {
	start := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	task := Task{Status: StatusPending}

	task.TransitionTo(StatusInProgress, start)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Nil(t, task.CompletedAt)

	task.TransitionTo(StatusCompleted, start)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, start, *task.CompletedAt)

	task.TransitionTo(StatusCompleted, start.Add(time.Hour))
	assert.Equal(t, start, *task.CompletedAt)

	task.TransitionTo(StatusPending, start.Add(2*time.Hour))
	assert.Equal(t, StatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)

	task.TransitionTo(StatusCompleted, start.Add(3*time.Hour))
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, start.Add(3*time.Hour), *task.CompletedAt)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pending", StatusPending.Label())
	assert.Equal(t, "In progress", StatusInProgress.Label())
	assert.Equal(t, "Completed", StatusCompleted.Label())
}
