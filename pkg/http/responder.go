package http

import (
	"net/http"
	"runtime/debug"

	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/logger"
)

const maskedMessage = "Internal server error"

// ErrorResponse is the single error body shape of the API.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Status  int            `json:"status"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   string         `json:"cause,omitempty"`
	Path    string         `json:"path,omitempty"`
	Stack   string         `json:"stack,omitempty"`
}

// Responder is the error boundary: every handler failure goes through Error.
type Responder struct {
	log        *logger.Logger
	production bool
}

func NewResponder(log *logger.Logger, production bool) *Responder {
	return &Responder{log: log, production: production}
}

// Error logs err with request context and writes the normalized body. In
// production 5xx messages are masked and causes are withheld; in development
// the body and the log line also carry the stack.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)
	body := rs.Body(r, appErr)

	attrs := []any{
		"request_id", RequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", appErr.StatusCode(),
		"code", appErr.Code,
		"error", err,
	}
	if !rs.production {
		body.Stack = string(debug.Stack())
		attrs = append(attrs, "stack", body.Stack)
	}
	if appErr.IsServerError() {
		rs.log.Error("Request failed", attrs...)
	} else {
		rs.log.Warn("Request rejected", attrs...)
	}

	if writeErr := WriteJSON(w, appErr.StatusCode(), body); writeErr != nil {
		rs.log.Error("failed to write error response", "request_id", RequestID(r.Context()), "error", writeErr)
	}
}

// Body builds the response body for appErr without writing it.
func (rs *Responder) Body(r *http.Request, appErr *apperrors.AppError) ErrorResponse {
	body := ErrorResponse{
		Error:   appErr.Message,
		Status:  appErr.StatusCode(),
		Code:    appErr.Code,
		Details: appErr.Details,
	}

	if rs.production {
		if appErr.IsServerError() {
			body.Error = maskedMessage
			body.Details = nil
		}
		return body
	}

	if appErr.Err != nil {
		body.Cause = appErr.Err.Error()
	}
	body.Path = r.URL.Path
	return body
}

// Panic writes the response for a recovered panic.
func (rs *Responder) Panic(w http.ResponseWriter, r *http.Request, recovered any) {
	appErr := apperrors.Internal(maskedMessage, nil)
	body := rs.Body(r, appErr)
	if !rs.production {
		if e, ok := recovered.(error); ok {
			body.Cause = e.Error()
		} else if s, ok := recovered.(string); ok {
			body.Cause = s
		}
		body.Stack = string(debug.Stack())
	}
	_ = WriteJSON(w, appErr.StatusCode(), body)
}

// Log returns the responder's logger for handlers that log success paths.
func (rs *Responder) Log() *logger.Logger {
	return rs.log
}
