package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Joseda-hg/taskflow/internal/model"
)

func (s *Server) parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, s.opts.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid due date %q", model.ErrValidation, raw)
	}
	return &t, nil
}

func (s *Server) draftFromForm(r *http.Request) (model.TaskDraft, error) {
	due, err := s.parseDate(r.PostFormValue("expected_completion_date"))
	if err != nil {
		return model.TaskDraft{}, err
	}
	return model.TaskDraft{
		Title:                  r.PostFormValue("title"),
		Description:            strings.TrimSpace(r.PostFormValue("description")),
		Priority:               model.Priority(r.PostFormValue("priority")),
		Size:                   model.Size(r.PostFormValue("size")),
		Category:               model.Category(r.PostFormValue("category")),
		ExpectedCompletionDate: due,
	}, nil
}

// patchFromForm reads the edit form, which always posts every field. Empty
// selects clear the optional columns.
func (s *Server) patchFromForm(r *http.Request) (model.TaskPatch, error) {
	var patch model.TaskPatch

	title := r.PostFormValue("title")
	patch.Title = &title
	description := strings.TrimSpace(r.PostFormValue("description"))
	patch.Description = &description

	if v := r.PostFormValue("status"); v != "" {
		status := model.Status(v)
		patch.Status = &status
	}
	if v := r.PostFormValue("priority"); v != "" {
		priority := model.Priority(v)
		patch.Priority = &priority
	} else {
		patch.ClearPriority = true
	}
	if v := r.PostFormValue("size"); v != "" {
		size := model.Size(v)
		patch.Size = &size
	} else {
		patch.ClearSize = true
	}
	if v := r.PostFormValue("category"); v != "" {
		category := model.Category(v)
		patch.Category = &category
	} else {
		patch.ClearCategory = true
	}

	due, err := s.parseDate(r.PostFormValue("expected_completion_date"))
	if err != nil {
		return model.TaskPatch{}, err
	}
	if due != nil {
		patch.ExpectedCompletionDate = due
	} else {
		patch.ClearExpectedCompletionDate = true
	}

	if v := r.PostFormValue("if_updated_at"); v != "" {
		loaded, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return model.TaskPatch{}, fmt.Errorf("%w: invalid version", model.ErrValidation)
		}
		patch.IfUpdatedAt = &loaded
	}
	return patch, nil
}
