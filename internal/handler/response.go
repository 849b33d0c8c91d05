package handler

import (
	"encoding/json"
	"net/http"

	"github.com/acmclub/ojrank/internal/apperrors"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes the short client-safe reason for an error; internal
// detail stays in the logs.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, apperrors.HTTPStatus(err), map[string]string{
		"error": apperrors.MessageOf(err),
		"code":  apperrors.CodeOf(err),
	})
}
