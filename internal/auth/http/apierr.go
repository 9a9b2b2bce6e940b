package http

import (
	"net/http"

	"github.com/marufbep/authgate/pkg/httpx"
)

// apiError is the JSON error envelope shared by all endpoints.
type apiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	httpx.WriteJSON(w, status, apiError{Code: code, Message: message})
}
