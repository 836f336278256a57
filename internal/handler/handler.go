package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pizzeria-api/internal/model"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:                http.StatusBadRequest,
	model.ErrCodeMissingField:               http.StatusBadRequest,
	model.ErrCodeInvalidCart:                http.StatusBadRequest,
	model.ErrCodeInvalidOrder:               http.StatusBadRequest,
	model.ErrCodeMissingAddress:             http.StatusBadRequest,
	model.ErrCodeAddressOutsideServiceArea:  http.StatusUnprocessableEntity,
	model.ErrCodeUnknownStatus:              http.StatusBadRequest,
	model.ErrCodeInvalidTransition:          http.StatusConflict,
	model.ErrCodeOrderNotFound:              http.StatusNotFound,
	model.ErrCodePaymentProviderUnavailable: http.StatusBadGateway,
	model.ErrCodeUnknownPaymentProvider:     http.StatusBadRequest,
	model.ErrCodeUpstreamUnavailable:        http.StatusServiceUnavailable,
	model.ErrCodeEmailTaken:                 http.StatusConflict,
	model.ErrCodeInvalidCredentials:         http.StatusUnauthorized,
	model.ErrCodeInvalidRegistration:        http.StatusBadRequest,
	model.ErrCodeInvalidCatalogItem:         http.StatusBadRequest,
	model.ErrCodeUnauthorised:               http.StatusUnauthorized,
	model.ErrCodeForbidden:                  http.StatusForbidden,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already written, so an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Error().
		Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.GetReqID(r.Context()),
	})
}

// writeDomainError maps err to its HTTP status. Errors that are not domain
// errors are reported as internal errors without exposing their text.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("unexpected error")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	status, ok := statusByCode[domainErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("code", domainErr.Code).
		Int("status", status).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("request failed")

	writeJSON(w, status, model.ErrorResponse{
		Error:         domainErr.Code,
		Message:       domainErr.Message,
		Detail:        domainErr.Detail,
		CorrelationID: middleware.GetReqID(r.Context()),
	})
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeInvalidJSON(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
}
