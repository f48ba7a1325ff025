package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteStatus(w, http.StatusOK, data)
}

// WriteStatus writes data as JSON with the given status code.
func (r Responder) WriteStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first so a failure can still produce a clean 500
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		status = http.StatusInternalServerError
		jsonData = []byte(`{"error":"Internal Server Error","status":"error"}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteCreated(w http.ResponseWriter, data any) {
	r.WriteStatus(w, http.StatusCreated, data)
}

func (r Responder) WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps err onto the API error shape. Causes are logged and never returned;
// anything that is not an ApiErr, and every 5xx, is answered with an opaque body.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.writeInternal(w, http.StatusInternalServerError)
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().
			Int("status", apiErr.StatusCode).
			Str("error", apiErr.GetFullError()).
			Msg("request failed")
		r.writeInternal(w, apiErr.StatusCode)
		return
	}

	if apiErr.Cause != nil {
		r.logger.Debug().Str("error", apiErr.GetFullError()).Msg("request rejected")
	}

	response := ErrorResponse{
		Error:   apiErr.Message(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
		Issues:  apiErr.Issues,
	}
	r.WriteStatus(w, apiErr.StatusCode, response)
}

func (r Responder) writeInternal(w http.ResponseWriter, status int) {
	message := "Internal Server Error"
	if status == http.StatusServiceUnavailable {
		message = "Service Unavailable"
	}
	r.WriteStatus(w, status, ErrorResponse{Error: message, Status: "error"})
}
