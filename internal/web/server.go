// Package web serves the task pages and the JSON API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Joseda-hg/taskflow/internal/auth"
	"github.com/Joseda-hg/taskflow/internal/model"
)

type TaskGateway interface {
	ListTasks(ctx context.Context, user model.User) ([]model.Task, error)
	GetTask(ctx context.Context, user model.User, id int64) (model.Task, error)
	CreateTask(ctx context.Context, user model.User, draft model.TaskDraft) (model.Task, error)
	UpdateStatus(ctx context.Context, user model.User, id int64, status model.Status) (model.Task, bool, error)
	UpdateFields(ctx context.Context, user model.User, id int64, patch model.TaskPatch) (model.Task, bool, error)
	DeleteTask(ctx context.Context, user model.User, id int64) (bool, error)
	AddComment(ctx context.Context, user model.User, taskID int64, text string) (model.Comment, error)
	ListComments(ctx context.Context, user model.User, taskID int64) ([]model.Comment, error)
	ListHistory(ctx context.Context, user model.User, taskID int64) ([]model.HistoryRecord, error)
	GetProfile(ctx context.Context, user model.User) (model.Profile, error)
}

type Authenticator interface {
	SignUp(ctx context.Context, email, password, redirectTo string) (auth.PendingUser, error)
	Confirm(ctx context.Context, token string) (string, error)
	SignInWithPassword(ctx context.Context, email, password string) (auth.Session, error)
	CurrentUser(ctx context.Context, token string) (model.User, error)
	SignOut(ctx context.Context, token string) error
}

type Options struct {
	AnonKey       string
	PublicBaseURL string
	CookieName    string
	// SecureCookies marks the session cookie Secure; enable behind HTTPS.
	SecureCookies bool
	Now           func() time.Time
}

type Server struct {
	gateway  TaskGateway
	auth     Authenticator
	sessions *Sessions
	opts     Options
	log      logrus.FieldLogger
}

func NewServer(gateway TaskGateway, authn Authenticator, sessions *Sessions, opts Options, log logrus.FieldLogger) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "taskflow_session"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		gateway:  gateway,
		auth:     authn,
		sessions: sessions,
		opts:     opts,
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(securityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/signin", s.signInPage)
	r.Post("/signin", s.signIn)
	r.Get("/signup", s.signUpPage)
	r.Post("/signup", s.signUp)
	r.Get("/auth/confirm", s.confirm)

	r.Group(func(r chi.Router) {
		r.Use(s.requirePageUser)
		r.Get("/", s.listPage)
		r.Post("/tasks", s.createTask)
		r.Get("/tasks/{id}", s.detailPage)
		r.Post("/tasks/{id}", s.editTask)
		r.Post("/tasks/{id}/status", s.changeStatus)
		r.Post("/tasks/{id}/delete", s.deleteTask)
		r.Post("/tasks/{id}/comments", s.addComment)
		r.Get("/settings", s.settingsPage)
		r.Post("/signout", s.signOut)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/auth/signin", s.apiSignIn)
		r.Post("/auth/signup", s.apiSignUp)

		r.Group(func(r chi.Router) {
			r.Use(s.requireBearer)
			r.Post("/auth/signout", s.apiSignOut)
			r.Get("/auth/user", s.apiUser)

			r.Get("/tasks", s.apiListTasks)
			r.Post("/tasks", s.apiCreateTask)
			r.Get("/tasks/{id}", s.apiGetTask)
			r.Patch("/tasks/{id}", s.apiUpdateTask)
			r.Delete("/tasks/{id}", s.apiDeleteTask)
			r.Post("/tasks/{id}/status", s.apiUpdateStatus)
			r.Get("/tasks/{id}/comments", s.apiListComments)
			r.Post("/tasks/{id}/comments", s.apiAddComment)
			r.Get("/tasks/{id}/history", s.apiListHistory)
		})
	})

	return otelhttp.NewHandler(r, "taskflow")
}
