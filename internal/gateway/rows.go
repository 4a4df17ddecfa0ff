package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
)

func notFound(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %v", model.ErrNotFound, err)
	}
	return err
}

func requiredTime(row db.Row, column string) (time.Time, error) {
	t, err := row.Time(column)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("column %s is null", column)
	}
	return *t, nil
}

func taskFromRow(row db.Row) (model.Task, error) {
	id, err := row.Int64("id")
	if err != nil {
		return model.Task{}, err
	}
	task := model.Task{
		ID:          id,
		UserID:      row.String("user_id"),
		Title:       row.String("title"),
		Description: row.String("description"),
		Status:      model.Status(row.String("status")),
		Priority:    model.Priority(row.String("priority")),
		Size:        model.Size(row.String("size")),
		Category:    model.Category(row.String("category")),
	}
	if task.ExpectedCompletionDate, err = row.Time("expected_completion_date"); err != nil {
		return model.Task{}, err
	}
	if task.StartedAt, err = row.Time("started_at"); err != nil {
		return model.Task{}, err
	}
	if task.CompletedAt, err = row.Time("completed_at"); err != nil {
		return model.Task{}, err
	}
	if task.CreatedAt, err = requiredTime(row, "created_at"); err != nil {
		return model.Task{}, err
	}
	if task.UpdatedAt, err = requiredTime(row, "updated_at"); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func tasksFromRows(rows []db.Row) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, err := taskFromRow(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func historyFromRow(row db.Row) (model.HistoryRecord, error) {
	id, err := row.Int64("id")
	if err != nil {
		return model.HistoryRecord{}, err
	}
	taskID, err := row.Int64("task_id")
	if err != nil {
		return model.HistoryRecord{}, err
	}
	changedAt, err := requiredTime(row, "changed_at")
	if err != nil {
		return model.HistoryRecord{}, err
	}
	return model.HistoryRecord{
		ID:             id,
		TaskID:         taskID,
		Action:         model.Action(row.String("action")),
		PreviousStatus: model.Status(row.String("previous_status")),
		NewStatus:      model.Status(row.String("new_status")),
		FieldName:      row.String("field_name"),
		OldValue:       row.String("old_value"),
		NewValue:       row.String("new_value"),
		ChangedAt:      changedAt,
		ChangedBy:      row.String("changed_by"),
	}, nil
}

func historyRow(record model.HistoryRecord) db.Row {
	return db.Row{
		"task_id":         record.TaskID,
		"action":          string(record.Action),
		"previous_status": db.Null(string(record.PreviousStatus)),
		"new_status":      db.Null(string(record.NewStatus)),
		"field_name":      db.Null(record.FieldName),
		"old_value":       db.Null(record.OldValue),
		"new_value":       db.Null(record.NewValue),
		"changed_at":      record.ChangedAt,
		"changed_by":      record.ChangedBy,
	}
}

func commentFromRow(row db.Row) (model.Comment, error) {
	id, err := row.Int64("id")
	if err != nil {
		return model.Comment{}, err
	}
	taskID, err := row.Int64("task_id")
	if err != nil {
		return model.Comment{}, err
	}
	comment := model.Comment{
		ID:      id,
		TaskID:  taskID,
		Content: row.String("content"),
		Author:  row.String("author"),
	}
	if comment.CreatedAt, err = requiredTime(row, "created_at"); err != nil {
		return model.Comment{}, err
	}
	if comment.UpdatedAt, err = requiredTime(row, "updated_at"); err != nil {
		return model.Comment{}, err
	}
	return comment, nil
}
