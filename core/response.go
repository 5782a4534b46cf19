package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope is the uniform JSON body returned by every endpoint.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// WriteJSON renders a success envelope with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// WriteError renders a failure envelope. Typed domain errors keep their status
// code and message; anything else is masked as an internal error so stray
// driver messages never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	message := http.StatusText(status)

	var e *Error
	if errors.As(err, &e) && status < http.StatusInternalServerError {
		message = e.Message
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}
