package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/marufbep/authgate/pkg/httpx"
)

// APIHandler serves the demo resource endpoints the frontend consumes.
type APIHandler struct{}

// HandlePublicHealth is the unauthenticated health payload.
func (h *APIHandler) HandlePublicHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"message":   "Public endpoint is working",
		"timestamp": time.Now().UnixMilli(),
	})
}

// HandleUser returns the authenticated user's profile projection.
func (h *APIHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userFromPrincipal(*p))
}

type protectedDataResponse struct {
	Message string               `json:"message"`
	User    string               `json:"user"`
	Data    protectedDataContent `json:"data"`
}

type protectedDataContent struct {
	Items       []string `json:"items"`
	Count       int      `json:"count"`
	LastUpdated int64    `json:"lastUpdated"`
}

// HandleProtectedData returns sample data behind the auth guard.
func (h *APIHandler) HandleProtectedData(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, protectedDataResponse{
		Message: "This is protected data",
		User:    p.Username,
		Data: protectedDataContent{
			Items:       []string{"Item 1", "Item 2", "Item 3"},
			Count:       3,
			LastUpdated: time.Now().UnixMilli(),
		},
	})
}

type actionRequest struct {
	Action string `json:"action"`
}

// HandleProtectedAction echoes a state-changing action for the demo client.
func (h *APIHandler) HandleProtectedAction(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "An action is required")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "Action performed successfully",
		"action":    req.Action,
		"user":      p.Username,
		"timestamp": time.Now().UnixMilli(),
	})
}
