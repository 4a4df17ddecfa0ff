package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
)

// AddComment attaches text to one of the user's tasks, signed with the
// user's email.
func (g *Gateway) AddComment(ctx context.Context, user model.User, taskID int64, text string) (comment model.Comment, err error) {
	ctx, span := startSpan(ctx, "gateway.AddComment", user, taskID)
	defer func() { endSpan(span, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return model.Comment{}, fmt.Errorf("%w: comment cannot be empty", model.ErrValidation)
	}
	if _, err := g.GetTask(ctx, user, taskID); err != nil {
		return model.Comment{}, err
	}

	now := g.timestamp()
	rows, err := g.store.Insert(ctx, "task_comments", db.Row{
		"task_id":    taskID,
		"content":    text,
		"author":     user.Email,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return model.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if len(rows) == 0 {
		return model.Comment{}, fmt.Errorf("insert comment: no row returned")
	}
	if comment, err = commentFromRow(rows[0]); err != nil {
		return model.Comment{}, err
	}

	if err := g.appendHistory(ctx, model.HistoryRecord{
		TaskID:    taskID,
		Action:    model.ActionCommentAdded,
		ChangedAt: now,
		ChangedBy: user.ID,
	}); err != nil {
		return comment, err
	}
	return comment, nil
}

// ListComments returns the task's comments, newest first.
func (g *Gateway) ListComments(ctx context.Context, user model.User, taskID int64) ([]model.Comment, error) {
	if _, err := g.GetTask(ctx, user, taskID); err != nil {
		return nil, err
	}
	rows, err := g.store.From("task_comments").
		Eq("task_id", taskID).
		Order("created_at", false).
		Order("id", false).
		Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, 0, len(rows))
	for _, row := range rows {
		comment, err := commentFromRow(row)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// ListHistory returns the task's history, newest first.
func (g *Gateway) ListHistory(ctx context.Context, user model.User, taskID int64) ([]model.HistoryRecord, error) {
	if _, err := g.GetTask(ctx, user, taskID); err != nil {
		return nil, err
	}
	rows, err := g.store.From("task_history").
		Eq("task_id", taskID).
		Order("changed_at", false).
		Order("id", false).
		Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	history := make([]model.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		record, err := historyFromRow(row)
		if err != nil {
			return nil, err
		}
		history = append(history, record)
	}
	return history, nil
}
