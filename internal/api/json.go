package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/quire/internal/apperr"
)

const maxBodySize = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeBody reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrFormat),
		errors.Is(err, apperr.ErrPassphraseMismatch),
		errors.Is(err, apperr.ErrWeakPassphrase):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrWrongPassphrase):
		writeJSON(w, http.StatusForbidden, errorBody(apperr.ErrWrongPassphrase.Error()))
	case errors.Is(err, apperr.ErrLocked), errors.Is(err, apperr.ErrNotLocked):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNothingToImport):
		writeJSON(w, http.StatusConflict, errorBody(apperr.ErrNothingToImport.Error()))
	case errors.Is(err, apperr.ErrStorageUnavailable):
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("storage unavailable"))
	default:
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
