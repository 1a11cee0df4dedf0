package http

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"guidetrack/internal/core"
	"guidetrack/internal/services"
)

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryTotal struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := parsePeriod(q, s.svc.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ListExpenses(p, sanitizeInput(q.Get("category"))))
}

// handleCreateExpense answers with every record created, which is more
// than one for a recurring expense.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Title = sanitizeInput(in.Title)
	in.Category = sanitizeInput(in.Category)
	in.Notes = sanitizeInput(in.Notes)

	created, err := s.svc.CreateExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Expense(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Title = sanitizeInput(in.Title)
	in.Category = sanitizeInput(in.Category)
	in.Notes = sanitizeInput(in.Notes)

	e, err := s.svc.UpdateExpense(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExpensesByCategory lists category totals, largest first.
func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r.URL.Query(), s.svc.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	totals := s.svc.ExpensesByCategory(p)
	out := make([]categoryTotal, 0, len(totals))
	for c, m := range totals {
		out = append(out, categoryTotal{Category: c, Amount: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents == out[j].Amount.Cents {
			return out[i].Category < out[j].Category
		}
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExpenseCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ExpenseCategories())
}

func (s *Server) handleAddExpenseCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := s.svc.AddExpenseCategory(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cats)
}

func (s *Server) handleCommissionCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CommissionCategories())
}
