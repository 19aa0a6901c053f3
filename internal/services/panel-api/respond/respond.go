// Package respond writes the JSON envelopes the panel front end expects.
package respond

import (
	"encoding/json"
	"net/http"
)

const StatusOK = "OK"

type envelope struct {
	StatusText string `json:"statusText,omitempty"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data answers GET requests: {"data": v}.
func Data(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, map[string]any{"data": v})
}

// OK answers mutations: {"statusText": "OK", "data": v}.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, envelope{StatusText: StatusOK, Data: v})
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, envelope{StatusText: http.StatusText(status), Message: msg})
}
