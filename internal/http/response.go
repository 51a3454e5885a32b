package http

import (
	"encoding/json"
	"net/http"

	"openmat-france/backend/internal/domain/openmat"
)

type APIError struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, APIError{Message: msg})
}

// mapError translates domain sentinels into HTTP statuses. Anything
// uncategorized is a 500 with a generic message; the detailed error stays
// in the logs.
func mapError(err error) (int, string) {
	switch {
	case openmat.IsErrBadRequest(err):
		return http.StatusBadRequest, err.Error()
	case openmat.IsErrNotFound(err):
		return http.StatusNotFound, err.Error()
	case openmat.IsErrUnavailable(err):
		return http.StatusServiceUnavailable, "backend temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
