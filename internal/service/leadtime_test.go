package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadTimeAccepts(t *testing.T) {
	cases := []struct {
		expr      string
		hours     int
		canonical string
	}{
		{"1 hour", 1, "1 hour"},
		{"24 hours", 24, "24 hours"},
		{"1 day", 24, "1 day"},
		{"2 days", 48, "2 days"},
		{"  3 Days ", 72, "3 days"},
		{"2 DAY", 48, "2 days"},
		{"1 hours", 1, "1 hour"},
		{"5\thours", 5, "5 hours"},
		{"7    days", 168, "7 days"},
		{"007 hours", 7, "7 hours"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			lead, err := ParseLeadTime(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.hours, lead.Hours)
			assert.Equal(t, tc.canonical, lead.String())
		})
	}
}

func TestParseLeadTimeRejects(t *testing.T) {
	for _, expr := range []string{
		"",
		"   ",
		"0 hours",
		"0 days",
		"-1 hours",
		"1.5 days",
		"2days",
		"two days",
		"2 weeks",
		"2 days ago",
		"days 2",
		"3 minutes",
		"3650 days 1 hour",
		"3651 days",
		"87601 hours",
		"99999999999999999999 hours",
	} {
		t.Run(fmt.Sprintf("%q", expr), func(t *testing.T) {
			_, err := ParseLeadTime(expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLeadTime), "got %v", err)
		})
	}
}

func TestParseLeadTimeUpperBound(t *testing.T) {
	lead, err := ParseLeadTime("3650 days")
	require.NoError(t, err)
	assert.Equal(t, maxLeadHours, lead.Hours)

	lead, err = ParseLeadTime("87600 hours")
	require.NoError(t, err)
	assert.Equal(t, maxLeadHours, lead.Hours)
}

func TestLeadTimeCanonicalFormRoundTrips(t *testing.T) {
	for n := 1; n <= 50; n++ {
		for _, unit := range []string{"hours", "days", "HOUR", "Day"} {
			lead, err := ParseLeadTime(fmt.Sprintf(" %d  %s ", n, unit))
			require.NoError(t, err)

			again, err := ParseLeadTime(lead.String())
			require.NoError(t, err)
			assert.Equal(t, lead, again)

			if lead.Days {
				assert.Equal(t, n*24, lead.Hours)
			} else {
				assert.Equal(t, n, lead.Hours)
			}
		}
	}
}

func TestScheduledFor(t *testing.T) {
	due := date(2025, time.March, 10)

	lead, err := ParseLeadTime("24 hours")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), ScheduledFor(due, lead.Hours))

	lead, err = ParseLeadTime("2 days")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC), ScheduledFor(due, lead.Hours))

	assert.Equal(t, time.Date(2025, time.March, 9, 21, 0, 0, 0, time.UTC), ScheduledFor(due, 3))
}

func TestScheduledForIgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2025, time.March, 10, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), ScheduledFor(due, 24))
}

func TestScheduledForProperty(t *testing.T) {
	due := date(2025, time.June, 30)
	for hours := 1; hours <= 24*60; hours += 7 {
		got := ScheduledFor(due, hours)
		assert.Equal(t, time.Duration(hours)*time.Hour, due.Sub(got))
		assert.Equal(t, time.UTC, got.Location())
	}
}
