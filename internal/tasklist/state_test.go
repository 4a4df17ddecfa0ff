package tasklist

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/taskflow/internal/filter"
	"github.com/Joseda-hg/taskflow/internal/model"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newState() *State {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func due(days int) *time.Time {
	t := fixedNow.AddDate(0, 0, days)
	return &t
}

func ids(tasks []model.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func TestLoadReplacesList(t *testing.T) {
	state := newState()
	state.Load([]model.Task{{ID: 1}, {ID: 2}})
	state.Load([]model.Task{{ID: 3}})
	assert.Equal(t, []int64{3}, ids(state.All()))
	assert.Equal(t, []int64{3}, ids(state.Visible()))
}

func TestUpsertReplacesInPlace(t *testing.T) {
	state := newState()
	state.Load([]model.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}})

	state.Upsert(model.Task{ID: 2, Title: "b2"})

	all := state.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, ids(all))
	assert.Equal(t, "b2", all[1].Title)
}

func TestUpsertPrependsNewTask(t *testing.T) {
	state := newState()
	state.Load([]model.Task{{ID: 1}, {ID: 2}})

	state.Upsert(model.Task{ID: 9})

	all := state.All()
	require.Len(t, all, 3)
	assert.Equal(t, int64(9), all[0].ID)
	assert.Equal(t, []int64{9, 1, 2}, ids(state.Visible()))
}

func TestRemoveDropsTask(t *testing.T) {
	state := newState()
	state.Load([]model.Task{{ID: 1}, {ID: 2}})
	state.Remove(1)
	state.Remove(42)
	assert.Equal(t, []int64{2}, ids(state.All()))
	_, ok := state.Get(1)
	assert.False(t, ok)
}

func TestSortAscendingScenario(t *testing.T) {
	state := newState()
	state.Load([]model.Task{
		{ID: 3, Title: "C"},
		{ID: 2, Title: "B", ExpectedCompletionDate: due(3)},
		{ID: 1, Title: "A", ExpectedCompletionDate: due(0)},
	})
	state.SetFilter(filter.Spec{})
	state.SetSort(SortSpec{Direction: SortAsc})

	assert.Equal(t, []int64{1, 2, 3}, ids(state.Visible()))
}

func TestMissingDatesSortLastInBothDirections(t *testing.T) {
	tasks := []model.Task{
		{ID: 1},
		{ID: 2, ExpectedCompletionDate: due(5)},
		{ID: 3},
		{ID: 4, ExpectedCompletionDate: due(-1)},
	}
	state := newState()
	state.Load(tasks)

	state.SetSort(SortSpec{Direction: SortAsc})
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(state.Visible()))

	state.SetSort(SortSpec{Direction: SortDesc})
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(state.Visible()))

	state.SetSort(SortSpec{})
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(state.Visible()))
}

func TestSortIsStableForEqualDates(t *testing.T) {
	state := newState()
	state.Load([]model.Task{
		{ID: 5, ExpectedCompletionDate: due(1)},
		{ID: 6, ExpectedCompletionDate: due(1)},
		{ID: 7, ExpectedCompletionDate: due(1)},
	})
	state.SetSort(SortSpec{Direction: SortDesc})
	assert.Equal(t, []int64{5, 6, 7}, ids(state.Visible()))
}

func TestFilterAppliesToUpserts(t *testing.T) {
	state := newState()
	state.SetFilter(filter.Spec{Priorities: []model.Priority{model.PriorityHigh}})
	state.Load([]model.Task{{ID: 1, Priority: model.PriorityHigh}, {ID: 2, Priority: model.PriorityLow}})
	assert.Equal(t, []int64{1}, ids(state.Visible()))

	state.Upsert(model.Task{ID: 2, Priority: model.PriorityHigh})
	assert.Equal(t, []int64{1, 2}, ids(state.Visible()))

	state.Upsert(model.Task{ID: 1, Priority: model.PriorityMedium})
	assert.Equal(t, []int64{2}, ids(state.Visible()))
	assert.Len(t, state.All(), 2)
}

func TestTimeFrameFilterUsesClock(t *testing.T) {
	state := newState()
	state.Load([]model.Task{
		{ID: 1, ExpectedCompletionDate: due(0)},
		{ID: 2, ExpectedCompletionDate: due(2)},
		{ID: 3},
	})
	state.SetFilter(filter.Spec{TimeFrames: []filter.TimeFrame{filter.TimeFrameToday}})
	assert.Equal(t, []int64{1}, ids(state.Visible()))
}

func TestGroupedKeepsWorkflowOrder(t *testing.T) {
	state := newState()
	state.Load([]model.Task{
		{ID: 1, Status: model.StatusCompleted},
		{ID: 2, Status: model.StatusNotStarted},
		{ID: 3, Status: model.StatusInProgress},
		{ID: 4, Status: model.StatusNotStarted},
	})
	groups := state.Grouped()
	require.Len(t, groups, 3)
	assert.Equal(t, model.StatusNotStarted, groups[0].Status)
	assert.Equal(t, []int64{2, 4}, ids(groups[0].Tasks))
	assert.Equal(t, []int64{3}, ids(groups[1].Tasks))
	assert.Equal(t, []int64{1}, ids(groups[2].Tasks))
}

func TestVisibleReturnsCopy(t *testing.T) {
	state := newState()
	state.Load([]model.Task{{ID: 1, Title: "keep"}})
	visible := state.Visible()
	visible[0].Title = "mutated"
	assert.Equal(t, "keep", state.Visible()[0].Title)
}

func TestConcurrentMutationsKeepProjectionConsistent(t *testing.T) {
	state := newState()
	state.SetSort(SortSpec{Direction: SortAsc})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			state.Upsert(model.Task{ID: id, ExpectedCompletionDate: due(int(id % 7))})
			_ = state.Visible()
		}(int64(i))
	}
	wg.Wait()

	visible := state.Visible()
	require.Len(t, visible, 50)
	for i := 1; i < len(visible); i++ {
		assert.False(t, visible[i].ExpectedCompletionDate.Before(*visible[i-1].ExpectedCompletionDate))
	}
}

func TestParseSortDirection(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortDirection("asc"))
	assert.Equal(t, SortDesc, ParseSortDirection("desc"))
	assert.Equal(t, SortNone, ParseSortDirection(""))
	assert.Equal(t, SortNone, ParseSortDirection("sideways"))
}

func TestConfigureReturnsMatchingView(t *testing.T) {
	state := newState()
	state.Load([]model.Task{
		{ID: 1, Category: model.CategoryOffice, ExpectedCompletionDate: due(4)},
		{ID: 2, Category: model.CategoryFamily},
		{ID: 3, Category: model.CategoryOffice, ExpectedCompletionDate: due(1)},
	})

	visible := state.Configure(
		filter.Spec{Categories: []model.Category{model.CategoryOffice}},
		SortSpec{Direction: SortAsc},
	)
	assert.Equal(t, []int64{3, 1}, ids(visible))
	assert.Equal(t, SortAsc, state.Sort().Direction)
	assert.Equal(t, []model.Category{model.CategoryOffice}, state.Filter().Categories)
}
