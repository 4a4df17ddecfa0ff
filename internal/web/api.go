package web

import (
	"net/http"
	"strings"

	"github.com/Joseda-hg/taskflow/internal/filter"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/tasklist"
)

type credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirect_to"`
}

type sessionResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   int64      `json:"expires_at"`
	User        model.User `json:"user"`
}

type signUpResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// updateResponse carries no task when the id matched nothing of the user's.
type updateResponse struct {
	Task    *model.Task `json:"task,omitempty"`
	Changed bool        `json:"changed"`
}

func newUpdateResponse(task model.Task, changed bool) updateResponse {
	if task.ID == 0 {
		return updateResponse{Changed: changed}
	}
	return updateResponse{Task: &task, Changed: changed}
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) apiSignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[credentials](w, r)
	if !ok {
		return
	}
	session, err := s.auth.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   session.ExpiresAt.Unix(),
		User:        session.User,
	})
}

func (s *Server) apiSignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[credentials](w, r)
	if !ok {
		return
	}
	redirectTo := strings.TrimSpace(req.RedirectTo)
	if redirectTo == "" {
		redirectTo = s.signInURL()
	}
	pending, err := s.auth.SignUp(r.Context(), req.Email, req.Password, redirectTo)
	if err != nil {
		writeAuthError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, signUpResponse{ID: pending.ID, Email: pending.Email})
}

func (s *Server) apiSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context(), tokenFrom(r.Context())); err != nil {
		writeAuthError(w, s.log, err)
		return
	}
	s.sessions.Forget(userFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

// apiListTasks accepts the same filter and sort query parameters as the
// list page.
func (s *Server) apiListTasks(w http.ResponseWriter, r *http.Request) {
	spec, err := filter.ParseSpec(r.URL.Query())
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	tasks, err := s.gateway.ListTasks(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}

	now := s.opts.Now()
	visible := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if filter.Matches(task, spec, now) {
			visible = append(visible, task)
		}
	}
	if sort := tasklist.ParseSortDirection(r.URL.Query().Get("sort")); sort != tasklist.SortNone {
		tasklist.SortByDueDate(visible, sort)
	}
	writeJSON(w, http.StatusOK, visible)
}

func (s *Server) apiCreateTask(w http.ResponseWriter, r *http.Request) {
	draft, ok := readJSON[model.TaskDraft](w, r)
	if !ok {
		return
	}
	release, ok := s.gate(w, r, "create", 0)
	if !ok {
		return
	}
	defer release()

	user := userFrom(r.Context())
	task, err := s.gateway.CreateTask(r.Context(), user, draft)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	s.sessions.Update(user, func(state *tasklist.State) { state.Upsert(task) })
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) apiGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	task, err := s.gateway.GetTask(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) apiUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	patch, ok := readJSON[model.TaskPatch](w, r)
	if !ok {
		return
	}
	release, ok := s.gate(w, r, "edit", id)
	if !ok {
		return
	}
	defer release()

	user := userFrom(r.Context())
	task, changed, err := s.gateway.UpdateFields(r.Context(), user, id, patch)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	if changed {
		s.sessions.Update(user, func(state *tasklist.State) { state.Upsert(task) })
	}
	writeJSON(w, http.StatusOK, newUpdateResponse(task, changed))
}

func (s *Server) apiUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	req, ok := readJSON[statusRequest](w, r)
	if !ok {
		return
	}
	release, ok := s.gate(w, r, "status", id)
	if !ok {
		return
	}
	defer release()

	user := userFrom(r.Context())
	task, changed, err := s.gateway.UpdateStatus(r.Context(), user, id, req.Status)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	if changed {
		s.sessions.Update(user, func(state *tasklist.State) { state.Upsert(task) })
	}
	writeJSON(w, http.StatusOK, newUpdateResponse(task, changed))
}

func (s *Server) apiDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	release, ok := s.gate(w, r, "delete", id)
	if !ok {
		return
	}
	defer release()

	// deleting a task that is already gone is not an error
	user := userFrom(r.Context())
	deleted, err := s.gateway.DeleteTask(r.Context(), user, id)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	if deleted {
		s.sessions.Update(user, func(state *tasklist.State) { state.Remove(id) })
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiListComments(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	comments, err := s.gateway.ListComments(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) apiAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	req, ok := readJSON[commentRequest](w, r)
	if !ok {
		return
	}
	release, ok := s.gate(w, r, "comment", id)
	if !ok {
		return
	}
	defer release()

	comment, err := s.gateway.AddComment(r.Context(), userFrom(r.Context()), id, req.Content)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) apiListHistory(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	history, err := s.gateway.ListHistory(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
