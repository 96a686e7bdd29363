package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"crmcore/pkg/platform/sentinel"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps sentinel errors to HTTP statuses. Validation errors are the
// caller's fault; storage failures are ours.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sentinel.ErrInvalidEntityKind),
		errors.Is(err, sentinel.ErrInvalidAction),
		errors.Is(err, sentinel.ErrUnknownTemplate):
		status = http.StatusBadRequest
	}
	WriteJSON(w, status, map[string]string{"error": publicMessage(err, status)})
}

func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		// Never leak store internals to clients.
		return "internal error"
	}
	return err.Error()
}
