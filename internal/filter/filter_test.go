package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/taskflow/internal/model"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func dueIn(days int, hour int) *time.Time {
	t := time.Date(2026, 3, 10+days, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestEmptySpecMatchesEverything(t *testing.T) {
	tasks := []model.Task{
		{ID: 1},
		{ID: 2, Priority: model.PriorityHigh, Size: model.SizeXS, Category: model.CategoryFamily, ExpectedCompletionDate: dueIn(-30, 0)},
		{ID: 3, ExpectedCompletionDate: dueIn(400, 0)},
	}
	for _, task := range tasks {
		assert.True(t, Matches(task, Spec{}, now), "task %d", task.ID)
	}
}

func TestMatchesRequiresPresentField(t *testing.T) {
	task := model.Task{ID: 1}
	assert.False(t, Matches(task, Spec{Priorities: []model.Priority{model.PriorityLow}}, now))
	assert.False(t, Matches(task, Spec{Sizes: []model.Size{model.SizeM}}, now))
	assert.False(t, Matches(task, Spec{Categories: []model.Category{model.CategoryOffice}}, now))
}

func TestMatchesOrWithinDimension(t *testing.T) {
	task := model.Task{Priority: model.PriorityMedium}
	assert.True(t, Matches(task, Spec{Priorities: []model.Priority{model.PriorityHigh, model.PriorityMedium}}, now))
	assert.False(t, Matches(task, Spec{Priorities: []model.Priority{model.PriorityHigh, model.PriorityLow}}, now))
}

func TestMatchesDimensionsAreIndependent(t *testing.T) {
	task := model.Task{
		Priority:               model.PriorityHigh,
		Size:                   model.SizeL,
		Category:               model.CategoryCareer,
		ExpectedCompletionDate: dueIn(10, 0),
	}
	satisfied := Spec{
		Priorities: []model.Priority{model.PriorityHigh},
		Sizes:      []model.Size{model.SizeL, model.SizeXL},
		Categories: []model.Category{model.CategoryCareer},
		TimeFrames: []TimeFrame{TimeFrameMonth},
	}
	require.True(t, Matches(task, satisfied, now))

	flips := map[string]Spec{
		"priority":   {Priorities: []model.Priority{model.PriorityLow}, Sizes: satisfied.Sizes, Categories: satisfied.Categories, TimeFrames: satisfied.TimeFrames},
		"size":       {Priorities: satisfied.Priorities, Sizes: []model.Size{model.SizeXS}, Categories: satisfied.Categories, TimeFrames: satisfied.TimeFrames},
		"category":   {Priorities: satisfied.Priorities, Sizes: satisfied.Sizes, Categories: []model.Category{model.CategoryFamily}, TimeFrames: satisfied.TimeFrames},
		"time frame": {Priorities: satisfied.Priorities, Sizes: satisfied.Sizes, Categories: satisfied.Categories, TimeFrames: []TimeFrame{TimeFrameToday}},
	}
	for name, spec := range flips {
		assert.False(t, Matches(task, spec, now), name)
	}
}

func TestTimeFrameWithoutDueDateNeverMatches(t *testing.T) {
	task := model.Task{Priority: model.PriorityHigh}
	for _, frame := range TimeFrames {
		assert.False(t, Matches(task, Spec{TimeFrames: []TimeFrame{frame}}, now), frame)
	}
	assert.False(t, Matches(task, Spec{TimeFrames: TimeFrames}, now))
}

func TestInTimeFrame(t *testing.T) {
	cases := []struct {
		name  string
		due   *time.Time
		frame TimeFrame
		want  bool
	}{
		{"today at midnight", dueIn(0, 0), TimeFrameToday, true},
		{"today late", dueIn(0, 23), TimeFrameToday, true},
		{"tomorrow midnight is not today", dueIn(1, 0), TimeFrameToday, false},
		{"yesterday is not today", dueIn(-1, 12), TimeFrameToday, false},
		{"week start", dueIn(0, 0), TimeFrameWeek, true},
		{"week end inclusive", dueIn(7, 0), TimeFrameWeek, true},
		{"after week end", dueIn(7, 1), TimeFrameWeek, false},
		{"month last day", dueIn(21, 0), TimeFrameMonth, true},
		{"month last day evening", dueIn(21, 20), TimeFrameMonth, true},
		{"next month", dueIn(22, 0), TimeFrameMonth, false},
		{"overdue is never in a frame", dueIn(-2, 0), TimeFrameMonth, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InTimeFrame(*tc.due, tc.frame, now))
		})
	}
}

func TestMatchesTimeFramesAreOred(t *testing.T) {
	task := model.Task{ExpectedCompletionDate: dueIn(5, 0)}
	assert.False(t, Matches(task, Spec{TimeFrames: []TimeFrame{TimeFrameToday}}, now))
	assert.True(t, Matches(task, Spec{TimeFrames: []TimeFrame{TimeFrameToday, TimeFrameWeek}}, now))
}

func TestParseSpecRoundTrip(t *testing.T) {
	values := url.Values{
		"priority":   {"high,low"},
		"size":       {"xs", "WEEK"},
		"category":   {"office"},
		"time_frame": {"today", "today"},
	}
	spec, err := ParseSpec(values)
	require.NoError(t, err)
	assert.Equal(t, []model.Priority{model.PriorityHigh, model.PriorityLow}, spec.Priorities)
	assert.Equal(t, []model.Size{model.SizeXS, model.SizeWeek}, spec.Sizes)
	assert.Equal(t, []model.Category{model.CategoryOffice}, spec.Categories)
	assert.Equal(t, []TimeFrame{TimeFrameToday}, spec.TimeFrames)

	again, err := ParseSpec(spec.Values())
	require.NoError(t, err)
	assert.Equal(t, spec, again)
}

func TestParseSpecRejectsUnknownValues(t *testing.T) {
	_, err := ParseSpec(url.Values{"priority": {"urgent"}})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = ParseSpec(url.Values{"time_frame": {"year"}})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestWithoutRemovesSingleChip(t *testing.T) {
	spec := Spec{
		Priorities: []model.Priority{model.PriorityHigh, model.PriorityLow},
		TimeFrames: []TimeFrame{TimeFrameWeek},
	}
	out := spec.Without(DimensionPriority, "high")
	assert.Equal(t, []model.Priority{model.PriorityLow}, out.Priorities)
	assert.Equal(t, []model.Priority{model.PriorityHigh, model.PriorityLow}, spec.Priorities)

	out = out.Without(DimensionTimeFrame, "week")
	assert.Empty(t, out.TimeFrames)
	assert.False(t, out.IsEmpty())
	assert.True(t, out.Without(DimensionPriority, "low").IsEmpty())
}
