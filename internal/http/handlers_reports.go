package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"guidetrack/internal/log"
	"guidetrack/internal/services"
)

const defaultReportMonths = 12

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r.URL.Query(), s.svc.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.Summary(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("period") == "" && q.Get("year") == "" {
		q.Set("period", "month")
	}
	p, err := parsePeriod(q, s.svc.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.svc.Dashboard(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleMonthlyReports takes ?months=N, 12 by default.
func (s *Server) handleMonthlyReports(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r.URL.Query(), "months")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("months") == "" {
		n = defaultReportMonths
	}
	reports, err := s.svc.MonthlyReports(n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleAgencyReports(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r.URL.Query(), s.svc.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	reports, err := s.svc.AgencyReports(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, r, badRequest("year must be a number"))
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, r, badRequest("month must be a number"))
		return
	}
	cal, err := s.svc.Calendar(year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *Server) handleToursOn(w http.ResponseWriter, r *http.Request) {
	d, err := dateParam(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tours, err := s.svc.ToursOn(d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tours)
}

const csvContentType = "text/csv; charset=utf-8"

func (s *Server) handleExportTours(w http.ResponseWriter, r *http.Request) {
	s.writeCSV(w, r, s.svc.ToursCSV())
}

func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	s.writeCSV(w, r, s.svc.ExpensesCSV())
}

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	s.writeCSV(w, r, s.svc.AllCSV())
}

func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, f services.CSVFile) {
	log.FromContext(r.Context()).InfoContext(r.Context(), "CSV exported",
		log.FieldOperation, log.OpExport,
		"file", f.Name)
	NewResponse().Attachment(csvContentType, f.Name, []byte(f.Content)).Write(w)
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.ExportBackup(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := "guidetrack-yedek-" + s.svc.Now().UTC().Format("2006-01-02") + ".json"
	NewResponse().Attachment("application/json; charset=utf-8", name, data).Write(w)
}

// handleImportBackup replaces the collections present in the uploaded
// backup and answers with the storage keys it wrote.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, maxBackupBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	imported, err := s.svc.ImportBackup(r.Context(), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if imported == nil {
		imported = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": imported})
}

// handleClearAll wipes storage. It needs ?confirm=true.
func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !ok {
		writeError(w, r, badRequest("confirm=true is required"))
		return
	}
	if err := s.svc.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
