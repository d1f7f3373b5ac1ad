// Package httputil centralizes JSON response writing and domain error
// translation so every handler produces the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "kinship/pkg/domain-errors"
)

// envelope is the uniform response body. Successful responses carry data;
// failures carry an error code and, for validation failures, per-field detail.
type envelope struct {
	Success          bool                 `json:"success"`
	Data             any                  `json:"data,omitempty"`
	Error            string               `json:"error,omitempty"`
	ErrorDescription string               `json:"error_description,omitempty"`
	Errors           []dErrors.FieldError `json:"errors,omitempty"`
}

// WriteJSON writes a success envelope with the given status and payload.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// WriteError translates a domain error into an HTTP response. Internal errors
// suppress their description so infrastructure detail never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""
	var fields []dErrors.FieldError

	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
		fields = de.Fields
	}

	if code == dErrors.CodeInternal {
		message = ""
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusOf(code))
	_ = json.NewEncoder(w).Encode(envelope{
		Error:            string(code),
		ErrorDescription: message,
		Errors:           fields,
	})
}

// StatusOf maps a domain error code to its HTTP status.
func StatusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvariantViolation,
		dErrors.CodeInvalidTransition, dErrors.CodePrerequisiteMissing:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
