package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("08:30")
	require.NoError(t, err)
	assert.Equal(t, "0 30 8 * * *", spec)

	spec, err = buildDailySpec(" 23:05 ")
	require.NoError(t, err)
	assert.Equal(t, "0 5 23 * * *", spec)

	for _, bad := range []string{"", "8", "24:00", "12:60", "ab:cd", "1:2:3"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerRejectsBadJobs(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC, time.Second)
	noop := func(context.Context) error { return nil }

	_, err := scheduler.ScheduleInterval("dispatch", 0, noop)
	require.Error(t, err)

	_, err = scheduler.ScheduleDaily("digest", "25:00", noop)
	require.Error(t, err)

	_, err = scheduler.ScheduleInterval("dispatch", time.Minute, noop)
	require.NoError(t, err)
	_, err = scheduler.ScheduleDaily("digest", "07:00", noop)
	require.NoError(t, err)

	scheduler.Start(context.Background())
	scheduler.Stop()
}

func TestSchedulerWrapAppliesTimeoutAndSkipsAfterCancel(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)
	defer scheduler.Stop()

	var sawDeadline bool
	scheduler.wrap("probe", func(jobCtx context.Context) error {
		_, sawDeadline = jobCtx.Deadline()
		return errors.New("logged, not returned")
	})()
	assert.True(t, sawDeadline)

	cancel()
	ran := false
	scheduler.wrap("probe", func(context.Context) error {
		ran = true
		return nil
	})()
	assert.False(t, ran)
}
