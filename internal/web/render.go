package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const dateLayout = "2006-01-02"

var funcs = template.FuncMap{
	"ago": func(t time.Time) string { return humanize.Time(t) },
	"stamp": func(t time.Time) string {
		return t.Local().Format("Jan 2, 2006 3:04 PM")
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Local().Format(dateLayout)
	},
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
		"templates/layout.tmpl", "templates/"+name+".tmpl"))
}

var (
	listTemplate     = parsePage("list")
	detailTemplate   = parsePage("detail")
	signInTemplate   = parsePage("signin")
	signUpTemplate   = parsePage("signup")
	settingsTemplate = parsePage("settings")
)

// page carries what the layout needs on every page.
type page struct {
	Title  string
	Email  string
	Error  string
	Notice string
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.WithError(err).Error("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirect sends the browser to target with an optional flash message.
func redirect(w http.ResponseWriter, r *http.Request, target, key, message string) {
	if message != "" {
		u, err := url.Parse(target)
		if err == nil {
			q := u.Query()
			q.Set(key, message)
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// localPath keeps form-supplied return targets on this site.
func localPath(raw, fallback string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return fallback
	}
	return raw
}
