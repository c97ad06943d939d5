package api

import (
	"encoding/json"
	"net/http"

	"godoe/internal/errors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(errors.Classify(err))
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code string) int {
	switch code {
	case errors.CodeConfigInvalid, errors.CodeInvalidInput, errors.CodeValidationError,
		errors.CodeShapeMismatch:
		return http.StatusBadRequest
	case errors.CodeDesignError:
		return http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeConflict:
		return http.StatusConflict
	case errors.CodeNotImplemented:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
