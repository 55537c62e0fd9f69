package api

import (
	"net/http"
	"strings"
)

type redeemRequest struct {
	Code string `json:"code"`
}

type acceptRequest struct {
	ConnectionID string `json:"connectionId"`
}

// handleGenerateCode issues a fresh 24-hour connection code.
func (s *Server) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.connections.GenerateCode(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, code)
}

// handleRedeemCode consumes a code and creates the pending connection.
func (s *Server) handleRedeemCode(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "code is required")
		return
	}

	conn, err := s.connections.Redeem(r.Context(), code, GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, conn)
}

// handleAcceptConnection records the caller's acceptance. The body is
// optional; without it the caller's current connection is accepted.
func (s *Server) handleAcceptConnection(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if r.ContentLength > 0 {
		if err := parseJSONBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
			return
		}
	}

	conn, err := s.connections.Accept(r.Context(), req.ConnectionID, GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conn)
}

// handleGetConnection returns the caller's connection and partner profile.
func (s *Server) handleGetConnection(w http.ResponseWriter, r *http.Request) {
	view, err := s.connections.Get(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleDisconnect removes the caller's connection for both sides.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.connections.Disconnect(r.Context(), GetUserID(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
