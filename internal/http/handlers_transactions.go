package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"expenseflow/internal/core"
	"expenseflow/internal/storage"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	mode, preset := listFilters(r)

	txns, err := s.svc.List(r.Context(), owner(r), preset, mode, todayDate())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "owner", owner(r), "error", err)
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": toPayloads(txns)})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.ID = 0
	txn, err := req.toTransaction(owner(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.svc.Add(r.Context(), txn)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "owner", owner(r), "error", err)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	s.invalidateDashboard(owner(r))
	txn.ID = id
	writeJSON(w, http.StatusCreated, toPayload(txn))
}

// handleTransactionByID serves /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, id)
	case http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	txn, err := s.svc.Get(r.Context(), id, owner(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction get failed", "owner", owner(r), "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load transaction")
		return
	}

	writeJSON(w, http.StatusOK, toPayload(*txn))
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	var req transactionPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.ID = id
	txn, err := req.toTransaction(owner(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.svc.Update(r.Context(), txn); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction update failed", "owner", owner(r), "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not update transaction")
		return
	}

	s.invalidateDashboard(owner(r))
	writeJSON(w, http.StatusOK, toPayload(txn))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.svc.Delete(r.Context(), id, owner(r)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction delete failed", "owner", owner(r), "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}

	s.invalidateDashboard(owner(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	_, preset := listFilters(r)
	key := dashboardCacheKey(owner(r), preset)

	dash, found := s.dashboardCache.Get(key)
	if !found {
		var err error
		dash, err = s.svc.Dashboard(r.Context(), owner(r), preset, todayDate())
		if err != nil {
			slog.ErrorContext(r.Context(), "Dashboard failed", "owner", owner(r), "error", err)
			writeError(w, http.StatusInternalServerError, "could not build dashboard")
			return
		}
		s.dashboardCache.Set(key, dash)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_income":  dash.Summary.TotalIncome,
		"total_expense": dash.Summary.TotalExpense,
		"balance":       dash.Summary.Balance,
		"currency":      dash.Currency,
		"recent":        toPayloads(dash.Recent),
	})
}

func (s *Server) handleResetDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := s.svc.ResetDashboard(r.Context(), owner(r)); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard reset failed", "owner", owner(r), "error", err)
		writeError(w, http.StatusInternalServerError, "could not reset dashboard")
		return
	}

	s.invalidateDashboard(owner(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "dashboard reset"})
}

type seriesPayload struct {
	Bucket  string      `json:"bucket"`
	Income  core.Amount `json:"income"`
	Expense core.Amount `json:"expense"`
}

func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	viz, err := s.svc.Visualization(r.Context(), owner(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Visualization failed", "owner", owner(r), "error", err)
		writeError(w, http.StatusInternalServerError, "could not build visualization data")
		return
	}

	toSeries := func(points []core.SeriesPoint) []seriesPayload {
		out := make([]seriesPayload, 0, len(points))
		for _, p := range points {
			out = append(out, seriesPayload{Bucket: p.Bucket, Income: p.Income, Expense: p.Expense})
		}
		return out
	}

	categories := make([]map[string]any, 0, len(viz.ByCategory))
	for _, c := range viz.ByCategory {
		categories = append(categories, map[string]any{"category": c.Category, "amount": c.Amount})
	}
	weekdays := make([]map[string]any, 0, len(viz.Weekday))
	for _, wd := range viz.Weekday {
		weekdays = append(weekdays, map[string]any{"weekday": wd.Weekday.String(), "amount": wd.Amount})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"monthly":    toSeries(viz.Monthly),
		"daily":      toSeries(viz.Daily),
		"categories": categories,
		"weekdays":   weekdays,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	data, err := s.svc.ExportCSV(r.Context(), owner(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "owner", owner(r), "error", err)
		writeError(w, http.StatusInternalServerError, "could not export report")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions_report.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleEmailReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := s.svc.EmailReport(r.Context(), owner(r)); err != nil {
		slog.ErrorContext(r.Context(), "Report email failed", "owner", owner(r), "error", err)
		writeError(w, http.StatusInternalServerError, "could not queue report email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "report queued"})
}

func (s *Server) handleSheetsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := s.svc.ExportToSheets(r.Context(), owner(r)); err != nil {
		slog.ErrorContext(r.Context(), "Sheets export failed", "owner", owner(r), "error", err)
		writeError(w, http.StatusInternalServerError, "could not export to sheets")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "exported"})
}
