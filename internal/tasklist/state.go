// Package tasklist keeps a user's task list and the filtered, sorted view the
// list page renders from it.
package tasklist

import (
	"slices"
	"sync"
	"time"

	"github.com/Joseda-hg/taskflow/internal/filter"
	"github.com/Joseda-hg/taskflow/internal/model"
)

type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func ParseSortDirection(value string) SortDirection {
	switch SortDirection(value) {
	case SortAsc:
		return SortAsc
	case SortDesc:
		return SortDesc
	}
	return SortNone
}

// SortSpec orders tasks by expected completion date. Tasks without one
// always come last.
type SortSpec struct {
	Direction SortDirection `json:"direction"`
}

type State struct {
	mu      sync.RWMutex
	now     func() time.Time
	all     []model.Task
	filter  filter.Spec
	sort    SortSpec
	visible []model.Task
}

type Option func(*State)

// WithClock overrides the clock used to evaluate time-frame filters.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func New(opts ...Option) *State {
	s := &State{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the whole list, typically after the initial fetch.
func (s *State) Load(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = slices.Clone(tasks)
	s.recompute()
}

// Upsert replaces the task with the same id in place or prepends it when it
// is new.
func (s *State) Upsert(task model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(task.ID); i >= 0 {
		s.all[i] = task
	} else {
		s.all = append([]model.Task{task}, s.all...)
	}
	s.recompute()
}

func (s *State) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = slices.DeleteFunc(s.all, func(t model.Task) bool { return t.ID == id })
	s.recompute()
}

func (s *State) SetFilter(spec filter.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = spec
	s.recompute()
}

func (s *State) SetSort(spec SortSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = spec
	s.recompute()
}

// Configure replaces filter and sort together and returns the resulting
// view, so a caller never reads a view built from someone else's settings.
func (s *State) Configure(spec filter.Spec, sort SortSpec) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = spec
	s.sort = sort
	s.recompute()
	return slices.Clone(s.visible)
}

// Refresh recomputes the view without changing any input, for when the day
// rolls over under a time-frame filter.
func (s *State) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute()
}

func (s *State) Visible() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.visible)
}

func (s *State) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.all)
}

func (s *State) Filter() filter.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *State) Sort() SortSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

func (s *State) Get(id int64) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.all[i], true
	}
	return model.Task{}, false
}

// Group is one status column of the visible list.
type Group struct {
	Status model.Status
	Tasks  []model.Task
}

// Grouped splits the visible tasks by status in workflow order, keeping the
// projection order inside each group.
func (s *State) Grouped() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GroupByStatus(s.visible)
}

func GroupByStatus(tasks []model.Task) []Group {
	groups := make([]Group, 0, len(model.Statuses))
	for _, status := range model.Statuses {
		group := Group{Status: status}
		for _, task := range tasks {
			if task.Status == status {
				group.Tasks = append(group.Tasks, task)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func (s *State) indexOf(id int64) int {
	return slices.IndexFunc(s.all, func(t model.Task) bool { return t.ID == id })
}

// recompute must be called with the write lock held.
func (s *State) recompute() {
	now := s.now()
	visible := make([]model.Task, 0, len(s.all))
	for _, task := range s.all {
		if filter.Matches(task, s.filter, now) {
			visible = append(visible, task)
		}
	}
	if s.sort.Direction != SortNone {
		SortByDueDate(visible, s.sort.Direction)
	}
	s.visible = visible
}

// SortByDueDate stable-sorts tasks by expected completion date. Tasks without
// a due date go last for either direction.
func SortByDueDate(tasks []model.Task, direction SortDirection) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		da, db := a.ExpectedCompletionDate, b.ExpectedCompletionDate
		switch {
		case da == nil && db == nil:
			return 0
		case da == nil:
			return 1
		case db == nil:
			return -1
		}
		cmp := da.Compare(*db)
		if direction == SortDesc {
			return -cmp
		}
		return cmp
	})
}
