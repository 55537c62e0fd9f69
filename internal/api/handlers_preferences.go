package api

import (
	"net/http"
)

type updatePreferencesRequest struct {
	DaysBeforeDue   []int `json:"daysBeforeDue"`
	NotifyOnPaid    bool  `json:"notifyOnPaid"`
	NotifyOnOverdue bool  `json:"notifyOnOverdue"`
}

// handleGetPreferences returns the caller's reminder configuration.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	pref, err := s.preferences.Get(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pref)
}

// handleUpdatePreferences replaces the caller's reminder configuration.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req updatePreferencesRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
		return
	}

	pref, err := s.preferences.Update(r.Context(), GetUserID(r.Context()),
		req.DaysBeforeDue, req.NotifyOnPaid, req.NotifyOnOverdue)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pref)
}
