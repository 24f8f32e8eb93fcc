package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/genapps/genforge/internal/domain"
)

// errorResponse is the JSON body returned for all error outcomes.
type errorResponse struct {
	Error string `json:"error"`
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.EUNAVAILABLE, domain.ECONFIG, domain.EINTERNAL:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes err as a JSON error body with the appropriate status.
// Internal details are logged but never leaked to the client.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= 500 {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"op", domain.ErrorOp(err),
			"error", err,
		)
	} else {
		logger.Info("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"error", err,
		)
	}

	writeJSONError(w, status, domain.ErrorMessage(err), logger)
}

// UnauthorizedResponse writes a 401 with a generic message.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	logger.Info("unauthorized request", "method", r.Method, "path", r.URL.Path)
	writeJSONError(w, http.StatusUnauthorized, "Unauthorized", logger)
}

func writeJSONError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
