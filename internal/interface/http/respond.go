package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse is the envelope of every API response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      any           `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	resp.Meta = &ResponseMeta{Timestamp: time.Now().UTC(), Version: "v1"}
	if r != nil {
		resp.RequestID = requestIDFrom(r.Context())
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, r, status, JSONResponse{Success: status < 400, Data: data})
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeEnvelope(w, r, status, JSONResponse{Error: &APIError{Code: code, Message: message}})
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

var errorStatuses = []struct {
	kind   error
	status int
	code   string
}{
	{shared.ErrNotFound, http.StatusNotFound, "not_found"},
	{shared.ErrAlreadyExists, http.StatusConflict, "conflict"},
	{shared.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{shared.ErrForbidden, http.StatusForbidden, "forbidden"},
	{shared.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{shared.ErrValidation, http.StatusBadRequest, "validation_error"},
	{shared.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{shared.ErrInvalidID, http.StatusBadRequest, "invalid_id"},
	{shared.ErrEmptyValue, http.StatusBadRequest, "validation_error"},
	{shared.ErrValueOutOfRange, http.StatusBadRequest, "validation_error"},
	{shared.ErrInvalidFormat, http.StatusBadRequest, "invalid_format"},
	{shared.ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	{shared.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
	{shared.ErrExternalService, http.StatusBadGateway, "upstream_error"},
	{shared.ErrInvalidState, http.StatusConflict, "invalid_state"},
}

// statusFor maps an error kind to an HTTP status and code.
func statusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.kind) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError renders an application error. Server errors are logged and
// their details hidden; domain errors expose their message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= 500 {
		s.requestLogger(r).Error("request failed", errField(err))
		writeJSONError(w, r, status, code, http.StatusText(status))
		return
	}

	message := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}
	writeJSONError(w, r, status, code, message)
}
