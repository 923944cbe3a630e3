package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"subtrack/internal/core"
)

const labelSubscription = "Subscription"

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var in core.SubscriptionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sub, err := s.tracker.CreateSubscription(r.Context(), in)
	if err != nil {
		s.writeError(w, r, labelSubscription, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	f, err := parseSubscriptionFilter(r)
	if err != nil {
		s.writeError(w, r, labelSubscription, err)
		return
	}
	subs, err := s.tracker.ListSubscriptions(r.Context(), f)
	if err != nil {
		s.writeError(w, r, labelSubscription, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.tracker.GetSubscription(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, labelSubscription, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var p core.SubscriptionPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	sub, err := s.tracker.UpdateSubscription(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, labelSubscription, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handleDeleteSubscription retires the subscription. It stays visible in
// exports.
func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteSubscription(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, labelSubscription, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Subscription deleted successfully"})
}
