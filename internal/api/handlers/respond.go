package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/services"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/store"
)

// envelope is the uniform response body: status plus either data or message.
type envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Internal error details are only echoed outside production. Off until
// SetEnvironment is called with the configured environment, so the default
// never leaks.
var devMode bool

// SetEnvironment applies the configured runtime environment to error
// responses.
func SetEnvironment(appEnv string) {
	devMode = appEnv != "production"
}

func statusLabel(code int) string {
	switch {
	case code < 400:
		return "success"
	case code < 500:
		return "fail"
	default:
		return "error"
	}
}

func respondData(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: statusLabel(code), Data: data})
}

func respondMessage(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: statusLabel(code), Message: msg})
}

// respondError maps the service and store error taxonomy to status codes.
// Anything unrecognized is an internal error with a user-safe message.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrForbidden):
		respondMessage(w, http.StatusForbidden, "Forbidden: insufficient rights for this resource")
	case errors.Is(err, services.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrNotFoundOrForbidden):
		respondMessage(w, http.StatusNotFound, "Resource not found or unauthorized")
	case errors.Is(err, store.ErrDuplicate):
		respondMessage(w, http.StatusConflict, "Duplicate entry. Resource already exists.")
	case errors.Is(err, store.ErrInvalidReference):
		respondMessage(w, http.StatusBadRequest, "Invalid reference. Referenced resource does not exist.")
	default:
		log.Error().Err(err).Msg("Unexpected error")
		msg := "Internal server error"
		if devMode {
			msg = err.Error()
		}
		respondMessage(w, http.StatusInternalServerError, msg)
	}
}
