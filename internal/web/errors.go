package web

import (
	"encoding/json"
	"net/http"

	"github.com/edusuite/gridcalc/internal/logging"
)

// ErrorResponse is the JSON body returned for all error statuses
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out, nothing useful to send the client
		return
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, msg string, err error) {
	log := logging.FromContext(r.Context())
	if status >= 500 {
		log.Error("request failed", "status", status, "code", code, "error", err)
	} else {
		log.Debug("request rejected", "status", status, "code", code, "error", err)
	}
	respondJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
