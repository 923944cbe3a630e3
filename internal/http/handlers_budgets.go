package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"subtrack/internal/core"
)

const labelBudget = "Budget"

// handleCreateBudget replaces any budget with the same type and category.
func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var in core.BudgetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Type == core.CategoryBudget {
		if err := validateBudgetCategory(in.Category); err != nil {
			s.writeError(w, r, labelBudget, err)
			return
		}
	}
	b, err := s.tracker.CreateBudget(r.Context(), in)
	if err != nil {
		s.writeError(w, r, labelBudget, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.tracker.ListBudgets(r.Context())
	if err != nil {
		s.writeError(w, r, labelBudget, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var p core.BudgetPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := validateBudgetCategory(p.Category); err != nil {
		s.writeError(w, r, labelBudget, err)
		return
	}
	b, err := s.tracker.UpdateBudget(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, labelBudget, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteBudget(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, labelBudget, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Budget deleted successfully"})
}
