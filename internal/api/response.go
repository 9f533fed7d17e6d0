package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"locationShare/internal/logging"
	"locationShare/internal/service"
)

// errorBody is the JSON shape of every failed API call.
type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps a service error onto an HTTP status and client message.
// Anything unrecognised is an internal error whose details stay in the log.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrAdminExists),
		errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		ev := logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path)
		var se *service.StoreError
		if errors.As(err, &se) {
			ev = ev.Str("op", se.Op)
		}
		ev.Msg("request failed")
	}
	writeError(w, status, msg)
}
