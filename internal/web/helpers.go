package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskflow/internal/auth"
	"github.com/Joseda-hg/taskflow/internal/filter"
	"github.com/Joseda-hg/taskflow/internal/model"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("write json response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeDomainError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status, message := domainStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeError(w, status, message)
}

// domainStatus maps an error to the HTTP status and the message shown to
// the user.
func domainStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "task not found"
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, "task was modified since it was loaded; reload and try again"
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
	case errors.Is(err, filter.ErrInvalidFilter):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "something went wrong, please try again"
}

func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid login credentials"
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		return http.StatusUnauthorized, "Email not confirmed. Please check your inbox."
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Your session has expired. Please sign in again."
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "User already registered"
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "Password must be at least 6 characters long"
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "Please enter a valid email address"
	}
	return http.StatusInternalServerError, "An error occurred, please try again"
}

func writeAuthError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status, message := authStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("auth request failed")
	}
	writeError(w, status, message)
}

func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

func taskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid task id %q", model.ErrNotFound, raw)
	}
	return id, nil
}
