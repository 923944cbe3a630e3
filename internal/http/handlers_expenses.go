package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"subtrack/internal/core"
)

const labelExpense = "Expense"

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := s.tracker.CreateExpense(r.Context(), in)
	if err != nil {
		s.writeError(w, r, labelExpense, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := parseExpenseFilter(r)
	if err != nil {
		s.writeError(w, r, labelExpense, err)
		return
	}
	expenses, err := s.tracker.ListExpenses(r.Context(), f)
	if err != nil {
		s.writeError(w, r, labelExpense, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.tracker.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, labelExpense, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var p core.ExpensePatch
	if !decodeJSON(w, r, &p) {
		return
	}
	e, err := s.tracker.UpdateExpense(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, labelExpense, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, labelExpense, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Expense deleted successfully"})
}
