package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"expenseflow/internal/auth"
	"expenseflow/internal/notify"
	"expenseflow/internal/services"
	"expenseflow/internal/storage"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "s3cret-pass"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	verifier := auth.NewBcryptVerifier(repo)
	dispatcher := notify.NewAMQPDispatcher(nil)
	svc := services.NewTransactionService(repo, dispatcher, nil)

	srv := NewServer(":0", svc, verifier, repo, 1000)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	if err := verifier.Register(context.Background(), testEmail, testPassword); err != nil {
		t.Fatalf("register test user: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.SetBasicAuth(testEmail, testPassword)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, nil, false)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	creds := map[string]string{"email": "bob@example.com", "password": "another-pass"}
	rr := doJSON(t, srv, http.MethodPost, "/api/register", creds, false)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Duplicate registration conflicts.
	rr = doJSON(t, srv, http.MethodPost, "/api/register", creds, false)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/login", creds, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d", rr.Code)
	}
	var profile struct {
		Email    string `json:"email"`
		Currency string `json:"currency"`
		Theme    string `json:"theme"`
	}
	decodeBody(t, rr, &profile)
	if profile.Currency != "₹ (INR)" || profile.Theme != "light" {
		t.Fatalf("unexpected defaults: %+v", profile)
	}

	creds["password"] = "wrong"
	rr = doJSON(t, srv, http.MethodPost, "/api/login", creds, false)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password login status=%d", rr.Code)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	cases := []map[string]string{
		{"email": "not-an-email", "password": "long-enough"},
		{"email": "ok@example.com", "password": "short"},
	}
	for i, c := range cases {
		rr := doJSON(t, srv, http.MethodPost, "/api/register", c, false)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("case %d: status=%d", i, rr.Code)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/transactions", nil, false)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status=%d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.SetBasicAuth(testEmail, "bad-password")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials status=%d", rec.Code)
	}
}

func TestTransactionCRUD(t *testing.T) {
	srv := newTestServer(t)

	payload := map[string]any{
		"type":     "Expense",
		"category": "Food",
		"amount":   "45.50",
		"date":     "2024-03-10",
		"remark":   "lunch",
	}
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", payload, true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID     int64  `json:"id"`
		Amount string `json:"amount"`
	}
	decodeBody(t, rr, &created)
	if created.ID == 0 || created.Amount != "45.50" {
		t.Fatalf("unexpected create response: %+v", created)
	}

	// Read it back.
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions/1", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status=%d", rr.Code)
	}

	// Update every field.
	payload["type"] = "Income"
	payload["category"] = "Salary"
	payload["amount"] = "1200"
	payload["remark"] = nil
	rr = doJSON(t, srv, http.MethodPut, "/api/transactions/1", payload, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	var updated struct {
		Type   string  `json:"type"`
		Amount string  `json:"amount"`
		Remark *string `json:"remark"`
	}
	decodeBody(t, rr, &updated)
	if updated.Type != "Income" || updated.Amount != "1200.00" || updated.Remark != nil {
		t.Fatalf("unexpected update response: %+v", updated)
	}

	// Delete, then the id is gone.
	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/1", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions/1", nil, true)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d", rr.Code)
	}
}

func TestTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []map[string]any{
		{"type": "Loan", "category": "X", "amount": "1", "date": "2024-01-01"},
		{"type": "Expense", "category": "X", "amount": "-5", "date": "2024-01-01"},
		{"type": "Expense", "category": "X", "amount": "1", "date": "01/02/2024"},
		{"type": "Expense", "category": "", "amount": "1", "date": "2024-01-01"},
	}
	for i, c := range cases {
		rr := doJSON(t, srv, http.MethodPost, "/api/transactions", c, true)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("case %d: status=%d body=%s", i, rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/transactions/abc", nil, true)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rr.Code)
	}
}

func TestListSortingAndFilter(t *testing.T) {
	srv := newTestServer(t)

	rows := []map[string]any{
		{"type": "Expense", "category": "Food", "amount": "50", "date": "2024-03-10"},
		{"type": "Income", "category": "Salary", "amount": "1000", "date": "2024-03-01"},
		{"type": "Expense", "category": "Travel", "amount": "120", "date": "2023-12-20"},
	}
	for _, row := range rows {
		rr := doJSON(t, srv, http.MethodPost, "/api/transactions", row, true)
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d", rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/transactions?sort_by=amount_desc", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var list struct {
		Transactions []struct {
			Category string `json:"category"`
		} `json:"transactions"`
	}
	decodeBody(t, rr, &list)
	if len(list.Transactions) != 3 || list.Transactions[0].Category != "Salary" {
		t.Fatalf("unexpected amount_desc order: %+v", list.Transactions)
	}

	// An unknown sort value lists in retrieval order instead of failing.
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?sort_by=garbage", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("garbage sort status=%d", rr.Code)
	}

	// Year filter keeps only current-year rows. The seeded 2023 row is out
	// of every preset window relative to a 2024+ clock, so just check that
	// the filter path responds.
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?date_filter=year", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("year filter status=%d", rr.Code)
	}
	decodeBody(t, rr, &list)
	for _, txn := range list.Transactions {
		if txn.Category == "Travel" {
			t.Fatal("2023 row leaked through the year filter")
		}
	}
}

func TestDashboardAndReset(t *testing.T) {
	srv := newTestServer(t)

	for _, row := range []map[string]any{
		{"type": "Income", "category": "Salary", "amount": "1000", "date": "2024-03-01"},
		{"type": "Expense", "category": "Food", "amount": "50", "date": "2024-03-10"},
	} {
		if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", row, true); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d", rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	var dash struct {
		Balance  json.Number `json:"balance"`
		Currency string      `json:"currency"`
	}
	decodeBody(t, rr, &dash)
	if dash.Balance.String() != "950.00" {
		t.Fatalf("balance = %s, want 950.00", dash.Balance)
	}

	// A mutation invalidates the cached aggregate.
	row := map[string]any{"type": "Expense", "category": "Food", "amount": "100", "date": "2024-03-11"}
	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", row, true); rr.Code != http.StatusCreated {
		t.Fatalf("seed status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", nil, true)
	decodeBody(t, rr, &dash)
	if dash.Balance.String() != "850.00" {
		t.Fatalf("balance after insert = %s, want 850.00", dash.Balance)
	}

	// Reset wipes everything.
	if rr := doJSON(t, srv, http.MethodPost, "/api/dashboard/reset", nil, true); rr.Code != http.StatusOK {
		t.Fatalf("reset status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions", nil, true)
	var list struct {
		Transactions []json.RawMessage `json:"transactions"`
	}
	decodeBody(t, rr, &list)
	if len(list.Transactions) != 0 {
		t.Fatalf("expected empty list after reset, got %d", len(list.Transactions))
	}
}

func TestVisualizationEndpoint(t *testing.T) {
	srv := newTestServer(t)

	for _, row := range []map[string]any{
		{"type": "Expense", "category": "Food", "amount": "50", "date": "2024-03-10"},
		{"type": "Expense", "category": "Travel", "amount": "120", "date": "2024-02-20"},
	} {
		if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", row, true); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d", rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/visualization", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("visualization status=%d", rr.Code)
	}
	var viz struct {
		Monthly    []json.RawMessage `json:"monthly"`
		Categories []json.RawMessage `json:"categories"`
		Weekdays   []json.RawMessage `json:"weekdays"`
	}
	decodeBody(t, rr, &viz)
	if len(viz.Monthly) != 2 || len(viz.Categories) != 2 || len(viz.Weekdays) != 7 {
		t.Fatalf("unexpected shape: monthly=%d categories=%d weekdays=%d",
			len(viz.Monthly), len(viz.Categories), len(viz.Weekdays))
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)

	row := map[string]any{"type": "Expense", "category": "Food", "amount": "50", "date": "2024-03-10"}
	if rr := doJSON(t, srv, http.MethodPost, "/api/transactions", row, true); rr.Code != http.StatusCreated {
		t.Fatalf("seed status=%d", rr.Code)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/report/csv", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("csv status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %s", ct)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("Food")) {
		t.Fatalf("csv missing row: %s", rr.Body.String())
	}
}

func TestThemeToggleAndCurrency(t *testing.T) {
	srv := newTestServer(t)

	// Empty body theme update toggles light -> dark.
	rr := doJSON(t, srv, http.MethodPut, "/api/settings/theme", map[string]string{}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle status=%d body=%s", rr.Code, rr.Body.String())
	}
	var theme struct {
		Theme string `json:"theme"`
	}
	decodeBody(t, rr, &theme)
	if theme.Theme != "dark" {
		t.Fatalf("theme = %s, want dark", theme.Theme)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/settings/currency", map[string]string{"currency": "$ (USD)"}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("currency update status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/settings", nil, true)
	var profile struct {
		Currency string `json:"currency"`
		Theme    string `json:"theme"`
	}
	decodeBody(t, rr, &profile)
	if profile.Currency != "$ (USD)" || profile.Theme != "dark" {
		t.Fatalf("unexpected settings: %+v", profile)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodDelete, "/api/register", nil, false)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("register DELETE status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPut, "/api/dashboard", nil, true)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("dashboard PUT status=%d", rr.Code)
	}
}

func TestPasswordChangeAndOTPFlow(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]string{"old_password": "wrong", "new_password": "new-password"}
	rr := doJSON(t, srv, http.MethodPost, "/api/password/change", body, true)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong old password status=%d", rr.Code)
	}

	// Forgot password always answers 200, known account or not.
	for _, email := range []string{testEmail, "nobody@example.com"} {
		rr = doJSON(t, srv, http.MethodPost, "/api/password/forgot", map[string]string{"email": email}, false)
		if rr.Code != http.StatusOK {
			t.Fatalf("forgot %s status=%d", email, rr.Code)
		}
	}

	// A bogus code is rejected.
	reset := map[string]string{"email": testEmail, "otp": "000000", "new_password": "new-password"}
	rr = doJSON(t, srv, http.MethodPost, "/api/password/reset", reset, false)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad otp status=%d", rr.Code)
	}
}
