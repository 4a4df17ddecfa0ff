package web

import (
	"html/template"
	"net/url"
	"time"

	"github.com/Joseda-hg/taskflow/internal/duedate"
	"github.com/Joseda-hg/taskflow/internal/filter"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/tasklist"
)

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type dimensionView struct {
	Name    string
	Key     filter.Dimension
	Options []optionView
}

type chipView struct {
	Label     string
	RemoveURL string
}

type moveView struct {
	TaskID int64
	Status model.Status
	Label  string
	Return string
}

type cardView struct {
	Task     model.Task
	DueLabel string
	DueColor template.CSS
	Moves    []moveView
}

type columnView struct {
	Name  string
	Color template.CSS
	Cards []cardView
}

type listData struct {
	page
	Empty       bool
	Total       int
	Shown       int
	Columns     []columnView
	Dimensions  []dimensionView
	Chips       []chipView
	SortOptions []optionView
	Priorities  []optionView
	Sizes       []optionView
	Categories  []optionView
	Return      string
}

type detailData struct {
	page
	Task        model.Task
	Version     string
	StatusColor template.CSS
	DueLabel    string
	DueColor    template.CSS
	Statuses    []optionView
	Priorities  []optionView
	Sizes       []optionView
	Categories  []optionView
	Comments    []model.Comment
	History     []model.HistoryRecord
}

type authData struct {
	page
	Form struct{ Email string }
}

type settingsData struct {
	page
	MemberSince time.Time
}

func options[T ~string](values []T, label func(T) string, selected ...T) []optionView {
	out := make([]optionView, 0, len(values))
	for _, v := range values {
		opt := optionView{Value: string(v), Label: label(v)}
		for _, s := range selected {
			if s == v {
				opt.Selected = true
			}
		}
		out = append(out, opt)
	}
	return out
}

func priorityLabel(p model.Priority) string { return string(p) }

func sizeLabel(s model.Size) string { return string(s) + " (" + s.Description() + ")" }

func categoryLabel(c model.Category) string { return string(c) }

func dimensions(spec filter.Spec) []dimensionView {
	return []dimensionView{
		{Name: "Priority", Key: filter.DimensionPriority, Options: options(model.Priorities, priorityLabel, spec.Priorities...)},
		{Name: "Size", Key: filter.DimensionSize, Options: options(model.Sizes, sizeLabel, spec.Sizes...)},
		{Name: "Category", Key: filter.DimensionCategory, Options: options(model.Categories, categoryLabel, spec.Categories...)},
		{Name: "Time Frame", Key: filter.DimensionTimeFrame, Options: options(filter.TimeFrames, filter.TimeFrame.DisplayName, spec.TimeFrames...)},
	}
}

func sortOptions(current tasklist.SortDirection) []optionView {
	return []optionView{
		{Value: string(tasklist.SortNone), Label: "None", Selected: current == tasklist.SortNone},
		{Value: string(tasklist.SortAsc), Label: "Earliest first", Selected: current == tasklist.SortAsc},
		{Value: string(tasklist.SortDesc), Label: "Latest first", Selected: current == tasklist.SortDesc},
	}
}

func listQuery(spec filter.Spec, sort tasklist.SortDirection) url.Values {
	values := spec.Values()
	if sort != tasklist.SortNone {
		values.Set("sort", string(sort))
	}
	return values
}

func listURL(values url.Values) string {
	if len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}

func chips(spec filter.Spec, sort tasklist.SortDirection) []chipView {
	out := []chipView{}
	for _, chip := range spec.Chips() {
		out = append(out, chipView{
			Label:     chip.Label,
			RemoveURL: listURL(listQuery(spec.Without(chip.Dimension, chip.Value), sort)),
		})
	}
	return out
}

func columns(groups []tasklist.Group, now time.Time, ret string) []columnView {
	out := make([]columnView, 0, len(groups))
	for _, group := range groups {
		column := columnView{Name: group.Status.DisplayName(), Color: cssColor(group.Status.Color())}
		for _, task := range group.Tasks {
			card := cardView{Task: task}
			if due := dueInfo(task, now); due != nil {
				card.DueLabel = due.Label
				card.DueColor = cssColor(due.Color)
			}
			for _, status := range model.Statuses {
				if status != task.Status {
					card.Moves = append(card.Moves, moveView{TaskID: task.ID, Status: status, Label: status.DisplayName(), Return: ret})
				}
			}
			column.Cards = append(column.Cards, card)
		}
		out = append(out, column)
	}
	return out
}

func cssColor(color string) template.CSS {
	return template.CSS(color)
}

func dueInfo(task model.Task, now time.Time) *duedate.Proximity {
	return duedate.Classify(task.ExpectedCompletionDate, now)
}
