package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guidetrack/internal/services"
	"guidetrack/internal/state"
)

func (s *Server) handleListAgencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Agencies())
}

func (s *Server) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Agency(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCreateAgency(w http.ResponseWriter, r *http.Request) {
	var in services.AgencyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svc.CreateAgency(r.Context(), sanitizeAgency(in))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAgency(w http.ResponseWriter, r *http.Request) {
	var in services.AgencyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svc.UpdateAgency(r.Context(), chi.URLParam(r, "id"), sanitizeAgency(in))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleDeleteAgency answers 409 while tours still reference the agency.
func (s *Server) handleDeleteAgency(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAgency(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sanitizeAgency(in services.AgencyInput) services.AgencyInput {
	in.Name = sanitizeInput(in.Name)
	in.ContactPerson = sanitizeInput(in.ContactPerson)
	in.Phone = sanitizeInput(in.Phone)
	in.Email = sanitizeInput(in.Email)
	in.Notes = sanitizeInput(in.Notes)
	return in
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch state.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	settings, err := s.svc.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleGetUser answers 404 before onboarding.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u := s.svc.User()
	if u == nil {
		writeError(w, r, services.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	var in services.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Name = sanitizeInput(in.Name)
	in.Email = sanitizeInput(in.Email)
	u, err := s.svc.SaveUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteUser(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
