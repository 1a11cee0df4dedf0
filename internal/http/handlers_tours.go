package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guidetrack/internal/core"
	"guidetrack/internal/services"
)

type tipRequest struct {
	Amount core.Money `json:"amount"`
	Note   string     `json:"note"`
}

type commissionRequest struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
}

// paymentRequest leaves PaidAmount nil to let the status pick the amount.
type paymentRequest struct {
	Status     core.PaymentStatus `json:"status"`
	PaidAmount *core.Money        `json:"paidAmount"`
}

func (s *Server) handleListTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := parsePeriod(q, s.svc.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := tourStatusParam(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ListTours(services.TourFilter{Period: p, Status: status}))
}

func (s *Server) handleCreateTour(w http.ResponseWriter, r *http.Request) {
	var in services.TourInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Title = sanitizeInput(in.Title)
	in.Notes = sanitizeInput(in.Notes)

	res, err := s.svc.CreateTour(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Tour(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTour(w http.ResponseWriter, r *http.Request) {
	var in services.TourInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Title = sanitizeInput(in.Title)
	in.Notes = sanitizeInput(in.Notes)

	res, err := s.svc.UpdateTour(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteTour(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTour(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTourMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.TourMetrics(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleCheckConflicts answers ?start=&end=&exclude= with the overlapping
// tours. It never blocks anything.
func (s *Server) handleCheckConflicts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := dateParam(q.Get("start"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var end core.Date
	if raw := q.Get("end"); raw != "" {
		if end, err = dateParam(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	conflicts, err := s.svc.CheckConflicts(start, end, q.Get("exclude"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hasConflict": len(conflicts) > 0,
		"conflicts":   conflicts,
	})
}

func (s *Server) handleAddTip(w http.ResponseWriter, r *http.Request) {
	var req tipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.AddTip(r.Context(), chi.URLParam(r, "id"), req.Amount, sanitizeInput(req.Note))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleAddCommission(w http.ResponseWriter, r *http.Request) {
	var req commissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.AddCommission(r.Context(), chi.URLParam(r, "id"), sanitizeInput(req.Category), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.PaidAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
