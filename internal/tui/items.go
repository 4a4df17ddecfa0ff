package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/taskflow/internal/duedate"
	"github.com/Joseda-hg/taskflow/internal/model"
)

func formatTaskSummary(task model.Task, now time.Time) string {
	parts := []string{task.Title}
	if task.Priority != "" {
		parts = append(parts, string(task.Priority))
	}
	if task.Size != "" {
		parts = append(parts, string(task.Size))
	}
	if due := duedate.Classify(task.ExpectedCompletionDate, now); due != nil {
		parts = append(parts, due.Label)
	}
	return strings.Join(parts, " | ")
}

func formatOptional(value string) string {
	if value == "" {
		return "n/a"
	}
	return value
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format("2006-01-02 15:04"), humanize.Time(*t))
}

func formatHistory(entry model.HistoryRecord) string {
	return fmt.Sprintf("%s | %s", humanize.Time(entry.ChangedAt), entry.Summary())
}

// detailLines renders the selected task for the detail pane.
func detailLines(task model.Task, now time.Time) []string {
	due := "n/a"
	if task.ExpectedCompletionDate != nil {
		due = task.ExpectedCompletionDate.Local().Format(dateLayout)
		if p := duedate.Classify(task.ExpectedCompletionDate, now); p != nil {
			due += " (" + p.Label + ")"
		}
	}
	size := formatOptional(string(task.Size))
	if task.Size != "" {
		size += " (" + task.Size.Description() + ")"
	}

	lines := []string{
		task.Title,
		fmt.Sprintf("Status: %s", task.Status.DisplayName()),
		fmt.Sprintf("Priority: %s", formatOptional(string(task.Priority))),
		fmt.Sprintf("Size: %s", size),
		fmt.Sprintf("Category: %s", formatOptional(string(task.Category))),
		fmt.Sprintf("Due: %s", due),
		fmt.Sprintf("Started: %s", formatStamp(task.StartedAt)),
		fmt.Sprintf("Completed: %s", formatStamp(task.CompletedAt)),
		fmt.Sprintf("Created: %s", formatStamp(&task.CreatedAt)),
	}
	if task.Description != "" {
		lines = append(lines, "", task.Description)
	}
	return lines
}
