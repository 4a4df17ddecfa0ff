// Package duedate classifies due dates relative to the current day.
package duedate

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindOverdue  Kind = "overdue"
	KindToday    Kind = "today"
	KindUpcoming Kind = "upcoming"
)

const (
	colorOverdue  = "#d32f2f"
	colorToday    = "#1976d2"
	colorUpcoming = "rgba(0, 0, 0, 0.6)"
)

type Proximity struct {
	Label string
	Color string
	Kind  Kind
	// Days is the signed calendar-day distance from today.
	Days int
}

// Classify reports how close due is to now. Only the calendar day of each
// value matters; due is read in now's location. A nil due date yields nil.
func Classify(due *time.Time, now time.Time) *Proximity {
	if due == nil {
		return nil
	}

	days := DaysBetween(now, *due)
	switch {
	case days < 0:
		return &Proximity{
			Label: fmt.Sprintf("Overdue by %d %s", -days, pluralDays(-days)),
			Color: colorOverdue,
			Kind:  KindOverdue,
			Days:  days,
		}
	case days == 0:
		return &Proximity{Label: "Due today", Color: colorToday, Kind: KindToday}
	default:
		return &Proximity{
			Label: fmt.Sprintf("Due in %d %s", days, pluralDays(days)),
			Color: colorUpcoming,
			Kind:  KindUpcoming,
			Days:  days,
		}
	}
}

// Midnight returns the start of t's calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from from to to, reading both in from's
// location. Counting on UTC dates keeps DST shifts out of the result.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.In(from.Location()).Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
