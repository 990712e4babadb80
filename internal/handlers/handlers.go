// Package handlers implements the JSON API surface: authentication,
// template browsing, customization editing, attachments, and settings.
// Handler groups are small structs wired with their stores in main.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError returns a JSON error body. Client errors carry the message;
// 5xx responses get a generic body so internals never leak.
func writeError(w http.ResponseWriter, status int, msg string) {
	if status >= 500 {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into dst, rejecting unknown fields and
// oversized payloads. Returns false after writing the error response.
func readJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathUUID parses a UUID route parameter. Returns uuid.Nil and writes a
// 400 when the parameter is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// Health responds to load balancer checks.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
