package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"invtrack/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps the store's sentinel errors onto HTTP status codes and
// writes the error verbatim. Unknown errors become opaque 500s.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrMovementNotFound),
		errors.Is(err, store.ErrUserNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateSerial),
		errors.Is(err, store.ErrDuplicateUsername):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInsufficientQuantity),
		errors.Is(err, store.ErrInvalidMovementType),
		errors.Is(err, store.ErrInvalidQuantity),
		errors.Is(err, store.ErrInvalidLocation),
		errors.Is(err, store.ErrInvalidStatus):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("store operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
