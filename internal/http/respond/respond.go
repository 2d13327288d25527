// Package respond writes the JSON bodies shared by every handler.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorBody is the {"error": ...} shape used for failures.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the {"message": ...} shape used for acknowledgements.
type MessageBody struct {
	Message string `json:"message"`
}

// MsgBody is the {"msg": ...} shape kept for registration failures.
type MsgBody struct {
	Msg string `json:"msg"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Warn("respond: encode payload failed")
	}
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// Message writes {"message": message}.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// Msg writes {"msg": message}.
func Msg(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MsgBody{Msg: message})
}
