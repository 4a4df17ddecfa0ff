// Package filter decides which tasks a user-selected filter lets through.
package filter

import (
	"slices"
	"time"

	"github.com/Joseda-hg/taskflow/internal/duedate"
	"github.com/Joseda-hg/taskflow/internal/model"
)

type TimeFrame string

const (
	TimeFrameToday TimeFrame = "today"
	TimeFrameWeek  TimeFrame = "week"
	TimeFrameMonth TimeFrame = "month"
)

var TimeFrames = []TimeFrame{TimeFrameToday, TimeFrameWeek, TimeFrameMonth}

func (f TimeFrame) Valid() bool {
	switch f {
	case TimeFrameToday, TimeFrameWeek, TimeFrameMonth:
		return true
	}
	return false
}

func (f TimeFrame) DisplayName() string {
	switch f {
	case TimeFrameToday:
		return "Today"
	case TimeFrameWeek:
		return "This Week"
	case TimeFrameMonth:
		return "This Month"
	}
	return string(f)
}

// Spec holds the accepted values per dimension. An empty dimension accepts
// everything.
type Spec struct {
	Priorities []model.Priority `json:"priority,omitempty"`
	Sizes      []model.Size     `json:"size,omitempty"`
	Categories []model.Category `json:"category,omitempty"`
	TimeFrames []TimeFrame      `json:"time_frame,omitempty"`
}

func (s Spec) IsEmpty() bool {
	return len(s.Priorities) == 0 && len(s.Sizes) == 0 && len(s.Categories) == 0 && len(s.TimeFrames) == 0
}

// Matches is the AND of every populated dimension, each an OR over its values.
func Matches(task model.Task, spec Spec, now time.Time) bool {
	if len(spec.Priorities) > 0 && (task.Priority == "" || !slices.Contains(spec.Priorities, task.Priority)) {
		return false
	}
	if len(spec.Sizes) > 0 && (task.Size == "" || !slices.Contains(spec.Sizes, task.Size)) {
		return false
	}
	if len(spec.Categories) > 0 && (task.Category == "" || !slices.Contains(spec.Categories, task.Category)) {
		return false
	}
	if len(spec.TimeFrames) > 0 && !matchesTimeFrames(task.ExpectedCompletionDate, spec.TimeFrames, now) {
		return false
	}
	return true
}

func matchesTimeFrames(due *time.Time, frames []TimeFrame, now time.Time) bool {
	if due == nil {
		return false
	}
	for _, frame := range frames {
		if InTimeFrame(*due, frame, now) {
			return true
		}
	}
	return false
}

// InTimeFrame reports whether due falls inside frame, counted from the start
// of now's day:
//
//	today: [midnight, midnight+1d)
//	week:  [midnight, midnight+7d]
//	month: [midnight, end of the month's last day]
func InTimeFrame(due time.Time, frame TimeFrame, now time.Time) bool {
	today := duedate.Midnight(now)
	due = due.In(now.Location())
	if due.Before(today) {
		return false
	}

	switch frame {
	case TimeFrameToday:
		return due.Before(today.AddDate(0, 0, 1))
	case TimeFrameWeek:
		return !due.After(today.AddDate(0, 0, 7))
	case TimeFrameMonth:
		firstOfNext := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, today.Location())
		return due.Before(firstOfNext)
	}
	return false
}
