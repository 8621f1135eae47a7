package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askhat/rentflow/internal/service"
)

func TestResolveBillingDate(t *testing.T) {
	cases := []struct {
		name       string
		year       int
		month      time.Month
		billingDay int
		wantDay    int
	}{
		{"regular day", 2026, time.January, 15, 15},
		{"day 31 in february", 2026, time.February, 31, 28},
		{"day 31 in leap february", 2024, time.February, 31, 29},
		{"day 31 in april", 2026, time.April, 31, 30},
		{"day 30 in february", 2026, time.February, 30, 28},
		{"last day of long month", 2026, time.March, 31, 31},
		{"zero day clamps to first", 2026, time.June, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.ResolveBillingDate(tc.year, tc.month, tc.billingDay)
			assert.Equal(t, tc.year, got.Year())
			assert.Equal(t, tc.month, got.Month())
			assert.Equal(t, tc.wantDay, got.Day())
		})
	}
}

func TestDueOn(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
	}

	assert.True(t, service.DueOn(day(2026, time.July, 1), 1))
	assert.True(t, service.DueOn(day(2026, time.July, 15), 1))
	assert.False(t, service.DueOn(day(2026, time.July, 14), 15))
	assert.True(t, service.DueOn(day(2026, time.July, 15), 15))

	// Billing day 31 resolves to the clamped last day in short months.
	assert.False(t, service.DueOn(day(2026, time.February, 27), 31))
	assert.True(t, service.DueOn(day(2026, time.February, 28), 31))
	assert.True(t, service.DueOn(day(2024, time.February, 29), 31))
	assert.False(t, service.DueOn(day(2024, time.February, 28), 31))
}

func TestWithinMoveInGrace(t *testing.T) {
	period := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, service.WithinMoveInGrace(time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC), period))
	assert.False(t, service.WithinMoveInGrace(time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), period))
	assert.False(t, service.WithinMoveInGrace(time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC), period))
}
