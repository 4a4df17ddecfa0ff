package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/taskflow/internal/auth"
	"github.com/Joseda-hg/taskflow/internal/filter"
	"github.com/Joseda-hg/taskflow/internal/model"
	"github.com/Joseda-hg/taskflow/internal/tasklist"
)

func flash(r *http.Request) page {
	q := r.URL.Query()
	return page{Error: q.Get("error"), Notice: q.Get("notice")}
}

func (s *Server) listPage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	p := flash(r)
	p.Title = "Tasks"
	p.Email = user.Email

	spec, err := filter.ParseSpec(r.URL.Query())
	if err != nil {
		p.Error = err.Error()
		spec = filter.Spec{}
	}
	sort := tasklist.ParseSortDirection(r.URL.Query().Get("sort"))

	state, err := s.sessions.State(r.Context(), user)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("load task list")
		p.Error = "Could not load your tasks. Please try again."
		s.render(w, http.StatusInternalServerError, listTemplate, listData{page: p, Empty: true})
		return
	}

	visible := state.Configure(spec, tasklist.SortSpec{Direction: sort})
	ret := listURL(listQuery(spec, sort))
	total := len(state.All())

	s.render(w, http.StatusOK, listTemplate, listData{
		page:        p,
		Empty:       total == 0,
		Total:       total,
		Shown:       len(visible),
		Columns:     columns(tasklist.GroupByStatus(visible), s.opts.Now(), ret),
		Dimensions:  dimensions(spec),
		Chips:       chips(spec, sort),
		SortOptions: sortOptions(sort),
		Priorities:  options(model.Priorities, priorityLabel),
		Sizes:       options(model.Sizes, sizeLabel),
		Categories:  options(model.Categories, categoryLabel),
		Return:      ret,
	})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	ret := localPath(r.PostFormValue("return"), "/")

	release, ok := s.gate(w, r, "create", 0)
	if !ok {
		return
	}
	defer release()

	draft, err := s.draftFromForm(r)
	if err != nil {
		redirect(w, r, ret, "error", s.pageError(err))
		return
	}
	task, err := s.gateway.CreateTask(r.Context(), user, draft)
	if err != nil {
		redirect(w, r, ret, "error", s.pageError(err))
		return
	}
	s.sessions.Update(user, func(state *tasklist.State) { state.Upsert(task) })
	redirect(w, r, ret, "", "")
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	ret := localPath(r.PostFormValue("return"), "/")
	id, err := taskID(r)
	if err != nil {
		redirect(w, r, ret, "error", s.pageError(err))
		return
	}

	release, ok := s.gate(w, r, "status", id)
	if !ok {
		return
	}
	defer release()

	task, changed, err := s.gateway.UpdateStatus(r.Context(), user, id, model.Status(r.PostFormValue("status")))
	if err != nil {
		redirect(w, r, ret, "error", s.pageError(err))
		return
	}
	if changed {
		s.sessions.Update(user, func(state *tasklist.State) { state.Upsert(task) })
	}
	redirect(w, r, ret, "", "")
}

func (s *Server) detailPage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	p := flash(r)
	p.Email = user.Email

	id, err := taskID(r)
	if err != nil {
		redirect(w, r, "/", "error", s.pageError(err))
		return
	}
	task, err := s.gateway.GetTask(r.Context(), user, id)
	if err != nil {
		redirect(w, r, "/", "error", s.pageError(err))
		return
	}
	history, err := s.gateway.ListHistory(r.Context(), user, id)
	if err != nil {
		redirect(w, r, "/", "error", s.pageError(err))
		return
	}
	comments, err := s.gateway.ListComments(r.Context(), user, id)
	if err != nil {
		redirect(w, r, "/", "error", s.pageError(err))
		return
	}

	p.Title = task.Title
	data := detailData{
		page:        p,
		Task:        task,
		Version:     task.UpdatedAt.Format(time.RFC3339Nano),
		StatusColor: cssColor(task.Status.Color()),
		Statuses:    options(model.Statuses, model.Status.DisplayName, task.Status),
		Priorities:  options(model.Priorities, priorityLabel, task.Priority),
		Sizes:       options(model.Sizes, sizeLabel, task.Size),
		Categories:  options(model.Categories, categoryLabel, task.Category),
		Comments:    comments,
		History:     history,
	}
	if due := dueInfo(task, s.opts.Now()); due != nil {
		data.DueLabel = due.Label
		data.DueColor = cssColor(due.Color)
	}
	s.render(w, http.StatusOK, detailTemplate, data)
}

func (s *Server) editTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, err := taskID(r)
	if err != nil {
		redirect(w, r, "/", "error", s.pageError(err))
		return
	}
	back := "/tasks/" + strconv.FormatInt(id, 10)

	release, ok := s.gate(w, r, "edit", id)
	if !ok {
		return
	}
	defer release()

	patch, err := s.patchFromForm(r)
	if err != nil {
		redirect(w, r, back, "error", s.pageError(err))
		return
	}
	task, changed, err := s.gateway.UpdateFields(r.Context(), user, id, patch)
	if err != nil {
		redirect(w, r, back, "error", s.pageError(err))
		return
	}
	if changed {
		s.sessions.Update(user, func(state *tasklist.State) { state.Upsert(task) })
		redirect(w, r, back, "notice", "Task saved")
		return
	}
	redirect(w, r, back, "", "")
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, err := taskID(r)
	if err != nil {
		redirect(w, r, "/", "error", s.pageError(err))
		return
	}

	release, ok := s.gate(w, r, "delete", id)
	if !ok {
		return
	}
	defer release()

	deleted, err := s.gateway.DeleteTask(r.Context(), user, id)
	if err != nil {
		redirect(w, r, "/tasks/"+strconv.FormatInt(id, 10), "error", s.pageError(err))
		return
	}
	if deleted {
		s.sessions.Update(user, func(state *tasklist.State) { state.Remove(id) })
	}
	redirect(w, r, "/", "notice", "Task deleted")
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id, err := taskID(r)
	if err != nil {
		redirect(w, r, "/", "error", s.pageError(err))
		return
	}
	back := "/tasks/" + strconv.FormatInt(id, 10)

	release, ok := s.gate(w, r, "comment", id)
	if !ok {
		return
	}
	defer release()

	if _, err := s.gateway.AddComment(r.Context(), user, id, r.PostFormValue("content")); err != nil {
		redirect(w, r, back, "error", s.pageError(err))
		return
	}
	redirect(w, r, back, "", "")
}

func (s *Server) settingsPage(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	data := settingsData{page: flash(r)}
	data.Title = "Settings"
	data.Email = user.Email
	if profile, err := s.gateway.GetProfile(r.Context(), user); err == nil {
		data.MemberSince = profile.CreatedAt
	}
	s.render(w, http.StatusOK, settingsTemplate, data)
}

func (s *Server) signInPage(w http.ResponseWriter, r *http.Request) {
	data := authData{page: flash(r)}
	data.Title = "Sign In"
	s.render(w, http.StatusOK, signInTemplate, data)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	session, err := s.auth.SignInWithPassword(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		status, message := authStatus(err)
		if status == http.StatusInternalServerError {
			s.log.WithError(err).Error("sign in")
		}
		data := authData{page: page{Title: "Sign In", Error: message}}
		data.Form.Email = email
		s.render(w, status, signInTemplate, data)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    session.AccessToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) signUpPage(w http.ResponseWriter, r *http.Request) {
	data := authData{page: flash(r)}
	data.Title = "Sign Up"
	s.render(w, http.StatusOK, signUpTemplate, data)
}

// signUp registers the account and sends the user to sign in; nobody is
// signed in until the email is confirmed.
func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	fail := func(status int, message string) {
		data := authData{page: page{Title: "Sign Up", Error: message}}
		data.Form.Email = email
		s.render(w, status, signUpTemplate, data)
	}

	if password != r.PostFormValue("confirm_password") {
		fail(http.StatusBadRequest, "Passwords do not match")
		return
	}
	if len(password) < auth.MinPasswordLength {
		fail(http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	if _, err := s.auth.SignUp(r.Context(), email, password, s.signInURL()); err != nil {
		status, message := authStatus(err)
		if status == http.StatusInternalServerError {
			s.log.WithError(err).Error("sign up")
		}
		fail(status, message)
		return
	}
	redirect(w, r, "/signin", "notice", "Please check your email to verify your account before signing in.")
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request) {
	target, err := s.auth.Confirm(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) {
			s.log.WithError(err).Error("confirm email")
		}
		redirect(w, r, "/signin", "error", "This confirmation link is invalid or has already been used.")
		return
	}
	redirect(w, r, localPath(strings.TrimPrefix(target, strings.TrimRight(s.opts.PublicBaseURL, "/")), "/signin"),
		"notice", "Email confirmed. You can sign in now.")
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := s.auth.SignOut(r.Context(), tokenFrom(r.Context())); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("sign out")
	}
	s.sessions.Forget(user)
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) signInURL() string {
	return strings.TrimRight(s.opts.PublicBaseURL, "/") + "/signin"
}

// pageError turns an error into the message shown inline on a page.
func (s *Server) pageError(err error) string {
	status, message := domainStatus(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
	}
	return message
}
