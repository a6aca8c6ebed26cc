package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"expenseflow/internal/core"
)

// errorResponse is the JSON body every failure returns.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a request body into dst, capping the body size.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// methodNotAllowed writes the Allow header and a 405 body.
func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// transactionPayload is the wire form of a transaction.
type transactionPayload struct {
	ID       int64   `json:"id,omitempty"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Amount   string  `json:"amount"`
	Date     string  `json:"date"`
	Remark   *string `json:"remark"`
}

// toTransaction validates and converts the payload into a domain transaction.
func (p transactionPayload) toTransaction(owner string) (core.Transaction, error) {
	kind, err := core.ParseKind(p.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:       p.ID,
		Owner:    owner,
		Kind:     kind,
		Category: sanitizeInput(p.Category),
		Amount:   amount,
		Date:     date,
	}
	if p.Remark != nil {
		remark := sanitizeInput(*p.Remark)
		if remark != "" {
			t.Remark = &remark
		}
	}
	return t, t.Validate()
}

func toPayload(t core.Transaction) transactionPayload {
	return transactionPayload{
		ID:       t.ID,
		Type:     string(t.Kind),
		Category: t.Category,
		Amount:   t.Amount.String(),
		Date:     t.Date.String(),
		Remark:   t.Remark,
	}
}

func toPayloads(txns []core.Transaction) []transactionPayload {
	out := make([]transactionPayload, 0, len(txns))
	for _, t := range txns {
		out = append(out, toPayload(t))
	}
	return out
}

// listFilters extracts the sort mode and date-filter preset from the query.
// Unrecognized values fall back to their defaults rather than failing.
func listFilters(r *http.Request) (core.SortMode, core.RangePreset) {
	q := r.URL.Query()
	return core.ParseSortMode(q.Get("sort_by")), core.ParseRangePreset(q.Get("date_filter"))
}

// todayDate is the reference point for relative date filters.
func todayDate() core.Date {
	return core.DateOf(time.Now())
}
