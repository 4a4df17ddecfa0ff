package gateway

import (
	"strings"
	"time"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
)

// fieldChange is one edited column. before and after are the values as
// history stores them, with "" for an absent value.
type fieldChange struct {
	field  string
	before string
	after  string
	value  any
}

func diffTask(before, after model.Task) []fieldChange {
	changes := []fieldChange{}
	add := func(field, b, a string, value any) {
		if b != a {
			changes = append(changes, fieldChange{field: field, before: b, after: a, value: value})
		}
	}

	add("title", before.Title, after.Title, after.Title)
	add("description", before.Description, after.Description, db.Null(after.Description))
	add("status", string(before.Status), string(after.Status), string(after.Status))
	add("priority", string(before.Priority), string(after.Priority), db.Null(string(after.Priority)))
	add("size", string(before.Size), string(after.Size), db.Null(string(after.Size)))
	add("category", string(before.Category), string(after.Category), db.Null(string(after.Category)))
	add("expected_completion_date", formatTime(before.ExpectedCompletionDate),
		formatTime(after.ExpectedCompletionDate), db.NullTime(after.ExpectedCompletionDate))

	return changes
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

// applyPatch returns the task as the patch would leave it, without the
// status change and its timestamps.
func applyPatch(task model.Task, patch model.TaskPatch) model.Task {
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}

	switch {
	case patch.ClearPriority:
		task.Priority = ""
	case patch.Priority != nil:
		task.Priority = *patch.Priority
	}
	switch {
	case patch.ClearSize:
		task.Size = ""
	case patch.Size != nil:
		task.Size = *patch.Size
	}
	switch {
	case patch.ClearCategory:
		task.Category = ""
	case patch.Category != nil:
		task.Category = *patch.Category
	}
	switch {
	case patch.ClearExpectedCompletionDate:
		task.ExpectedCompletionDate = nil
	case patch.ExpectedCompletionDate != nil:
		due := patch.ExpectedCompletionDate.UTC()
		task.ExpectedCompletionDate = &due
	}
	return task
}
