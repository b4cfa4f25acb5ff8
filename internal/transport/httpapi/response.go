package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	errx "github.com/hrcopilot/server/internal/core/error"
	logx "github.com/hrcopilot/server/pkg/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logx.Warn().Err(err).Msg("Failed to encode response body")
	}
}

// writeErrorResponse maps err to its status and the {error, details} body.
// Errors without an AppError in their chain are reported as a generic 500.
func writeErrorResponse(w http.ResponseWriter, err error) {
	var appErr *errx.AppError
	if !errors.As(err, &appErr) {
		appErr = errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		logx.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}

	writeJSONResponse(w, status, errorResponse{
		Error:   appErr.Message,
		Details: appErr.Details(),
	})
}
