package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// handleDashboard serves the dashboard. ?recent=N overrides the number of
// recent transactions; 0 or absent uses the configured default.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	recent, err := queryInt(r, "recent", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.reports.Dashboard(r.Context(), recent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReportYears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"years": s.reports.Years()})
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rep, err := s.reports.YearlyReport(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleMonthlyReport answers any integer month. Months outside 1-12 yield
// an empty report rather than an error.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, err := pathInt(r, "month")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rep, err := s.reports.MonthlyReport(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Monthly report built",
		applog.NewFields().WithPeriod(year, month).ToSlice()...)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	views, err := s.reports.Goals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleOverdueGoals(w http.ResponseWriter, r *http.Request) {
	views, err := s.reports.OverdueGoals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// handleListTransactions lists transactions newest first, optionally
// narrowed by ?year=, ?month= (needs year) and ?type=.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var f services.TransactionFilter
	var err error
	if f.Year, err = queryInt(r, "year", 0); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Month, err = queryInt(r, "month", 0); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Month != 0 && f.Year == 0 {
		writeError(w, r, fmt.Errorf("%w: month requires year", errMalformed))
		return
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		if f.Type, err = core.ParseTransactionType(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	txs, err := s.reports.Transactions(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// handleListCategories answers both flows, or a single list with ?type=.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ, err := core.ParseTransactionType(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cats, err := s.reports.CategoriesByType(r.Context(), typ)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cats)
		return
	}

	lists, err := s.reports.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}
