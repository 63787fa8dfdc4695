package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error bodies are {"error": {<field>: <message>}} where <field> names
// the offending request field, or "message" for generic failures.
// Success bodies carry "data", plus "sessionId" for auth operations and
// "errors" for batch gets.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, field, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{field: message},
	})
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeAuth(w http.ResponseWriter, status int, data any, sessionID string) {
	writeJSON(w, status, map[string]any{"data": data, "sessionId": sessionID})
}

func writeBatch(w http.ResponseWriter, data any, errs []string) {
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "errors": errs})
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "message", "Unauthorized.")
}

func invalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "message", "Invalid JSON.")
}

func internalError(w http.ResponseWriter, err error) {
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "message", "Internal server error.")
}
