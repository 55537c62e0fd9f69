package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"billmate/internal/service"
)

type setPaidRequest struct {
	Paid bool `json:"paid"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type setSplitRequest struct {
	User1Percentage decimal.Decimal `json:"user1Percentage"`
	User2Percentage decimal.Decimal `json:"user2Percentage"`
}

// handleListBills returns the caller's bills, shared ones included.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.List(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if bills == nil {
		bills = []*service.BillView{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

// handleGetBill returns one bill.
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.Get(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bill)
}

// handleCreateBill creates a new bill.
func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var input service.BillInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
		return
	}

	bill, err := s.bills.Create(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	activityAppends.Inc()
	respondJSON(w, http.StatusCreated, bill)
}

// handleUpdateBill rewrites the bill's editable fields.
func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var input service.BillInput
	if err := parseJSONBody(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
		return
	}

	bill, err := s.bills.Update(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"], input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bill)
}

// handleSetPaid toggles the caller's side of the paid flags.
func (s *Server) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	var req setPaidRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
		return
	}

	bill, err := s.bills.SetPaid(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"], req.Paid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	activityAppends.Inc()
	respondJSON(w, http.StatusOK, bill)
}

// handleDeleteBill removes a bill (creator only).
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.bills.Delete(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	activityAppends.Inc()
	respondJSON(w, http.StatusNoContent, nil)
}

// handleListActivities returns the bill's audit trail, newest first.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.bills.Activities(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"activities": activities})
}

// handleComment appends a comment to the bill's activity log.
func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
		return
	}

	activity, err := s.bills.Comment(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"], req.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	activityAppends.Inc()
	respondJSON(w, http.StatusCreated, activity)
}

// handleGetSplit returns how the bill divides between the two sides.
func (s *Server) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	split, err := s.bills.GetSplit(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, split)
}

// handleSetSplit stores the bill's split percentages.
func (s *Server) handleSetSplit(w http.ResponseWriter, r *http.Request) {
	var req setSplitRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidInput, "invalid request body")
		return
	}

	split, err := s.bills.SetSplit(r.Context(), GetUserID(r.Context()), mux.Vars(r)["id"],
		req.User1Percentage, req.User2Percentage)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, split)
}
