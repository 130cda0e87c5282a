// Package httpx holds small helpers shared by the JSON handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

type errBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status. Encoding failures are
// ignored; the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a machine-readable error body.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errBody{Error: msg})
}
