package http

import (
	"net/http"
	"strconv"

	applog "fintrack/internal/log"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.writer.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var id int64
	if saved.ID != nil {
		id = *saved.ID
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogTransactionCreated(r.Context(),
		id, string(saved.Type), saved.Description, saved.Amount.Cents, saved.Category.Name)

	w.Header().Set("Location", "/api/transactions/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.writer.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := req.toCategory()
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.writer.CreateCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := req.toGoal()
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.writer.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleCancelGoal answers DELETE on a goal. Goals are cancelled, not removed.
func (s *Server) handleCancelGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.writer.CancelGoal(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
