package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type accessResponse struct {
	RequestID string     `json:"request_id"`
	UserID    string     `json:"user_id"`
	HasAccess bool       `json:"has_access"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *Server) handleAccessCheck(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	userID := r.URL.Query().Get("user_id")

	g, err := s.accessUC.HasAccess(r.Context(), requestID, userID)
	if err != nil {
		writeErr(w, s.log, r, err)
		return
	}
	resp := accessResponse{RequestID: requestID, UserID: userID}
	if g != nil {
		resp.HasAccess = true
		resp.ExpiresAt = &g.ExpiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}
