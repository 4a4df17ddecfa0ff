package duedate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNilDueDate(t *testing.T) {
	assert.Nil(t, Classify(nil, time.Now()))
}

func TestClassifyLabels(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		due   time.Time
		kind  Kind
		label string
		days  int
	}{
		{"overdue singular", now.AddDate(0, 0, -1), KindOverdue, "Overdue by 1 day", -1},
		{"overdue plural", now.AddDate(0, 0, -4), KindOverdue, "Overdue by 4 days", -4},
		{"today", now, KindToday, "Due today", 0},
		{"upcoming singular", now.AddDate(0, 0, 1), KindUpcoming, "Due in 1 day", 1},
		{"upcoming plural", now.AddDate(0, 0, 12), KindUpcoming, "Due in 12 days", 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			due := tc.due
			got := Classify(&due, now)
			require.NotNil(t, got)
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.label, got.Label)
			assert.Equal(t, tc.days, got.Days)
		})
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	want := Classify(&due, day)
	require.NotNil(t, want)

	for _, nowOffset := range []time.Duration{0, time.Minute, 11 * time.Hour, 23*time.Hour + 59*time.Minute} {
		for _, dueOffset := range []time.Duration{0, time.Second, 13 * time.Hour, 24*time.Hour - time.Millisecond} {
			shifted := due.Add(dueOffset)
			got := Classify(&shifted, day.Add(nowOffset))
			require.NotNil(t, got)
			assert.Equal(t, *want, *got, "now+%s due+%s", nowOffset, dueOffset)
		}
	}
}

func TestClassifyTodayBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	endOfDay := now.Add(24*time.Hour - time.Millisecond)
	got := Classify(&endOfDay, now)
	require.NotNil(t, got)
	assert.Equal(t, KindToday, got.Kind)

	tomorrow := now.Add(24 * time.Hour)
	got = Classify(&tomorrow, now)
	require.NotNil(t, got)
	assert.Equal(t, KindUpcoming, got.Kind)
	assert.Equal(t, 1, got.Days)
	assert.Equal(t, "Due in 1 day", got.Label)
}

func TestClassifyAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2026-11-01 is a 25 hour day in New York.
	now := time.Date(2026, 10, 31, 8, 0, 0, 0, loc)
	due := time.Date(2026, 11, 2, 0, 0, 0, 0, loc)

	got := Classify(&due, now)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Days)
	assert.Equal(t, "Due in 2 days", got.Label)
}

func TestClassifyReadsDueInNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, loc)
	// 02:00 UTC on the 11th is still the 10th at UTC-5.
	due := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)

	got := Classify(&due, now)
	require.NotNil(t, got)
	assert.Equal(t, KindToday, got.Kind)
}
