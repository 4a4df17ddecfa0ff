package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/workflow"
)

// ListTasks returns the user's tasks, newest first.
func (g *Gateway) ListTasks(ctx context.Context, user model.User) (tasks []model.Task, err error) {
	ctx, span := startSpan(ctx, "gateway.ListTasks", user, 0)
	defer func() { endSpan(span, err) }()

	rows, err := g.store.From("tasks").
		Eq("user_id", user.ID).
		Order("created_at", false).
		Order("id", false).
		Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasksFromRows(rows)
}

func (g *Gateway) GetTask(ctx context.Context, user model.User, id int64) (model.Task, error) {
	row, err := g.store.From("tasks").Eq("id", id).Eq("user_id", user.ID).Single(ctx)
	if err != nil {
		return model.Task{}, notFound(err)
	}
	return taskFromRow(row)
}

// CreateTask stores a new not_started task and records its creation.
func (g *Gateway) CreateTask(ctx context.Context, user model.User, draft model.TaskDraft) (task model.Task, err error) {
	ctx, span := startSpan(ctx, "gateway.CreateTask", user, 0)
	defer func() { endSpan(span, err) }()

	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := g.EnsureProfile(ctx, user); err != nil {
		return model.Task{}, err
	}

	now := g.timestamp()
	var due any
	if draft.ExpectedCompletionDate != nil {
		due = draft.ExpectedCompletionDate.UTC()
	}
	rows, err := g.store.Insert(ctx, "tasks", db.Row{
		"user_id":                  user.ID,
		"title":                    strings.TrimSpace(draft.Title),
		"description":              db.Null(draft.Description),
		"status":                   string(model.StatusNotStarted),
		"priority":                 db.Null(string(draft.Priority)),
		"size":                     db.Null(string(draft.Size)),
		"category":                 db.Null(string(draft.Category)),
		"expected_completion_date": due,
		"started_at":               nil,
		"completed_at":             nil,
		"created_at":               now,
		"updated_at":               now,
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if len(rows) == 0 {
		return model.Task{}, fmt.Errorf("insert task: no row returned")
	}
	if task, err = taskFromRow(rows[0]); err != nil {
		return model.Task{}, err
	}

	if err := g.appendHistory(ctx, model.HistoryRecord{
		TaskID:    task.ID,
		Action:    model.ActionCreated,
		NewStatus: model.StatusNotStarted,
		ChangedAt: now,
		ChangedBy: user.ID,
	}); err != nil {
		return task, err
	}

	g.log.WithFields(logrus.Fields{"user_id": user.ID, "task_id": task.ID}).Info("task created")
	return task, nil
}

// UpdateStatus moves a task to status. started_at is stamped only the first
// time the task enters in_progress and completed_at every time it enters
// completed. changed is false when the task already had that status or no
// task with that id belongs to user.
func (g *Gateway) UpdateStatus(ctx context.Context, user model.User, id int64, status model.Status) (task model.Task, changed bool, err error) {
	ctx, span := startSpan(ctx, "gateway.UpdateStatus", user, id)
	defer func() { endSpan(span, err) }()

	snapshot, err := g.GetTask(ctx, user, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, err
	}

	transition, err := workflow.Next(snapshot.Status, snapshot.StartedAt != nil, status)
	if err != nil {
		return model.Task{}, false, err
	}
	if !transition.Changed {
		return snapshot, false, nil
	}

	now := g.timestamp()
	patch := db.Row{
		"status":     string(transition.Status),
		"updated_at": now,
	}
	stamp(patch, transition, now)

	task, ok, err := g.writeTask(ctx, user, id, patch, writeGuard{unstarted: transition.StampStartedAt})
	if err != nil || !ok {
		return snapshot, false, err
	}

	if err := g.appendHistory(ctx, model.HistoryRecord{
		TaskID:         id,
		Action:         model.ActionStatusChanged,
		PreviousStatus: snapshot.Status,
		NewStatus:      transition.Status,
		ChangedAt:      now,
		ChangedBy:      user.ID,
	}); err != nil {
		return task, true, err
	}
	return task, true, nil
}

// UpdateFields applies an edit. The history entries describe the difference
// between the patch and the task as read at write time, one entry per
// changed field. When the patch carries IfUpdatedAt and the task has been
// modified since, nothing is written and ErrConflict is returned.
func (g *Gateway) UpdateFields(ctx context.Context, user model.User, id int64, patch model.TaskPatch) (task model.Task, changed bool, err error) {
	ctx, span := startSpan(ctx, "gateway.UpdateFields", user, id)
	defer func() { endSpan(span, err) }()

	if err := patch.Validate(); err != nil {
		return model.Task{}, false, err
	}

	snapshot, err := g.GetTask(ctx, user, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, err
	}
	if patch.IfUpdatedAt != nil && !patch.IfUpdatedAt.Equal(snapshot.UpdatedAt) {
		return model.Task{}, false, model.ErrConflict
	}

	edited := applyPatch(snapshot, patch)
	var transition workflow.Transition
	if patch.Status != nil {
		if transition, err = workflow.Next(snapshot.Status, snapshot.StartedAt != nil, *patch.Status); err != nil {
			return model.Task{}, false, err
		}
		edited.Status = transition.Status
	}

	changes := diffTask(snapshot, edited)
	if len(changes) == 0 {
		return snapshot, false, nil
	}

	now := g.timestamp()
	row := db.Row{"updated_at": now}
	for _, change := range changes {
		row[change.field] = change.value
	}
	stamp(row, transition, now)

	guard := writeGuard{unstarted: transition.StampStartedAt}
	if patch.IfUpdatedAt != nil {
		guard.updatedAt = &snapshot.UpdatedAt
	}
	task, ok, err := g.writeTask(ctx, user, id, row, guard)
	if err != nil {
		return model.Task{}, false, err
	}
	if !ok {
		if guard.updatedAt != nil {
			return model.Task{}, false, model.ErrConflict
		}
		return snapshot, false, nil
	}

	records := make([]model.HistoryRecord, 0, len(changes))
	for _, change := range changes {
		records = append(records, model.HistoryRecord{
			TaskID:    id,
			Action:    model.ActionFieldUpdated,
			FieldName: change.field,
			OldValue:  change.before,
			NewValue:  change.after,
			ChangedAt: now,
			ChangedBy: user.ID,
		})
	}
	if err := g.appendHistory(ctx, records...); err != nil {
		return task, true, err
	}
	return task, true, nil
}

// DeleteTask removes the task for good. History entries stay behind.
func (g *Gateway) DeleteTask(ctx context.Context, user model.User, id int64) (deleted bool, err error) {
	ctx, span := startSpan(ctx, "gateway.DeleteTask", user, id)
	defer func() { endSpan(span, err) }()

	n, err := g.store.From("tasks").Eq("id", id).Eq("user_id", user.ID).Delete(ctx)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	if n > 0 {
		g.log.WithFields(logrus.Fields{"user_id": user.ID, "task_id": id}).Info("task deleted")
	}
	return n > 0, nil
}

// writeGuard narrows a task write beyond id and owner.
type writeGuard struct {
	// updatedAt pins the row to the version the caller read.
	updatedAt *time.Time
	// unstarted only matches rows whose started_at is still empty, so
	// started_at is written at most once across processes.
	unstarted bool
}

// writeTask updates one task scoped by id and user. A write the guard
// filters out reports false like one that matched no task.
func (g *Gateway) writeTask(ctx context.Context, user model.User, id int64, patch db.Row, guard writeGuard) (model.Task, bool, error) {
	q := g.store.From("tasks").Eq("id", id).Eq("user_id", user.ID)
	if guard.updatedAt != nil {
		q = q.Eq("updated_at", *guard.updatedAt)
	}
	if guard.unstarted {
		q = q.Eq("started_at", nil)
	}
	rows, err := q.Update(ctx, patch)
	if err != nil {
		return model.Task{}, false, fmt.Errorf("update task: %w", err)
	}
	if len(rows) == 0 {
		return model.Task{}, false, nil
	}
	task, err := taskFromRow(rows[0])
	if err != nil {
		return model.Task{}, false, err
	}
	return task, true, nil
}

func stamp(row db.Row, transition workflow.Transition, now any) {
	if transition.StampStartedAt {
		row["started_at"] = now
	}
	if transition.StampCompletedAt {
		row["completed_at"] = now
	}
}

func (g *Gateway) appendHistory(ctx context.Context, records ...model.HistoryRecord) error {
	rows := make([]db.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, historyRow(record))
	}
	if _, err := g.store.Insert(ctx, "task_history", rows...); err != nil {
		return fmt.Errorf("record history for task %d: %w", records[0].TaskID, err)
	}
	return nil
}
