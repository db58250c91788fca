package utils

import (
	"encoding/json"
	"net/http"

	"dispatchai-pro/internal/apperr"
)

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondData wraps data in the standard success envelope
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// RespondAppError maps a classified error to its status code
func RespondAppError(w http.ResponseWriter, err error) {
	RespondError(w, apperr.HTTPStatus(err), err.Error())
}
