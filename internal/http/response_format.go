package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/x-msgpack"
)

// wantsMsgpack reports whether the client asked for MessagePack with
// format=msgpack or an Accept header.
func wantsMsgpack(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "msgpack")
	}
	return strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}

// writeData encodes data as JSON, or MessagePack when requested.
func writeData(w http.ResponseWriter, r *http.Request, status int, data any) error {
	w.Header().Set("Cache-Control", "no-store")
	if wantsMsgpack(r) {
		return writeMsgpack(w, status, data)
	}
	return writeJSON(w, status, data)
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func writeMsgpack(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(status)
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json")
	return encoder.Encode(data)
}

// apiError is the body of every API error response.
type apiError struct {
	Error string `json:"error"`
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, apiError{Error: message})
}
