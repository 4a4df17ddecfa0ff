package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskflow/internal/model"
)

const dateLayout = "2006-01-02"

type formField struct {
	Label string
	Value string
	// Choices makes the field a select cycled with space and the arrow keys.
	// The empty choice means unset.
	Choices []string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldSize
	fieldCategory
	fieldDue
)

func choices[T ~string](values []T, optional bool) []string {
	out := make([]string, 0, len(values)+1)
	if optional {
		out = append(out, "")
	}
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func buildFormFields(task *model.Task) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: "Status (space/←→)", Choices: choices(model.Statuses, false)},
		{Label: "Priority (space/←→)", Choices: choices(model.Priorities, true)},
		{Label: "Size (space/←→)", Choices: choices(model.Sizes, true)},
		{Label: "Category (space/←→)", Choices: choices(model.Categories, true)},
		{Label: "Due (YYYY-MM-DD)"},
	}

	if task == nil {
		fields[fieldStatus].Value = string(model.StatusNotStarted)
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldDescription].Value = task.Description
	fields[fieldStatus].Value = string(task.Status)
	fields[fieldPriority].Value = string(task.Priority)
	fields[fieldSize].Value = string(task.Size)
	fields[fieldCategory].Value = string(task.Category)
	if task.ExpectedCompletionDate != nil {
		fields[fieldDue].Value = task.ExpectedCompletionDate.Local().Format(dateLayout)
	}
	return fields
}

func draftFromFields(fields []formField) (model.TaskDraft, error) {
	due, err := parseDue(fields[fieldDue].Value)
	if err != nil {
		return model.TaskDraft{}, err
	}
	return model.TaskDraft{
		Title:                  strings.TrimSpace(fields[fieldTitle].Value),
		Description:            strings.TrimSpace(fields[fieldDescription].Value),
		Priority:               model.Priority(fields[fieldPriority].Value),
		Size:                   model.Size(fields[fieldSize].Value),
		Category:               model.Category(fields[fieldCategory].Value),
		ExpectedCompletionDate: due,
	}, nil
}

// patchFromFields sends every field; the gateway works out what changed.
// version is the updated_at the form was opened with.
func patchFromFields(fields []formField, version time.Time) (model.TaskPatch, error) {
	due, err := parseDue(fields[fieldDue].Value)
	if err != nil {
		return model.TaskPatch{}, err
	}

	title := strings.TrimSpace(fields[fieldTitle].Value)
	description := strings.TrimSpace(fields[fieldDescription].Value)
	status := model.Status(fields[fieldStatus].Value)
	patch := model.TaskPatch{
		Title:       &title,
		Description: &description,
		Status:      &status,
		IfUpdatedAt: &version,
	}

	if v := fields[fieldPriority].Value; v != "" {
		priority := model.Priority(v)
		patch.Priority = &priority
	} else {
		patch.ClearPriority = true
	}
	if v := fields[fieldSize].Value; v != "" {
		size := model.Size(v)
		patch.Size = &size
	} else {
		patch.ClearSize = true
	}
	if v := fields[fieldCategory].Value; v != "" {
		category := model.Category(v)
		patch.Category = &category
	} else {
		patch.ClearCategory = true
	}
	if due != nil {
		patch.ExpectedCompletionDate = due
	} else {
		patch.ClearExpectedCompletionDate = true
	}
	return patch, nil
}

// parseDue reads a calendar date as local midnight.
func parseDue(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, trimmed, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date")
	}
	return &parsed, nil
}

func cycleChoice(field *formField, delta int) {
	if len(field.Choices) == 0 {
		return
	}
	index := 0
	for i, choice := range field.Choices {
		if choice == field.Value {
			index = i
			break
		}
	}
	n := len(field.Choices)
	field.Value = field.Choices[((index+delta)%n+n)%n]
}

func displayChoice(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}
