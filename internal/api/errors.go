package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobmonitor/internal/domain"

	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedRequest),
		errors.Is(err, domain.ErrMissingTaskName),
		errors.Is(err, domain.ErrUnresolvedTask):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQueueUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {message}. Client errors carry their own text;
// server errors are logged and replaced by a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		log.Ctx(r.Context()).Error().Err(err).Msg("queue store unavailable")
		msg = domain.ErrQueueUnavailable.Error()
	case http.StatusInternalServerError:
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		msg = "internal server error"
	}
	respondMessage(w, r, status, msg)
}

func respondMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, r, status, errorResponse{Message: msg})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
