package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"expenseflow/internal/core"
	"expenseflow/internal/notify"
)

// fakeStore keeps transactions in memory and records which list call ran.
type fakeStore struct {
	txns       []core.Transaction
	currency   string
	ranged     bool
	gotStart   core.Date
	gotEnd     core.Date
	deletedAll string
}

func (f *fakeStore) AddTransaction(_ context.Context, t core.Transaction) (int64, error) {
	t.ID = int64(len(f.txns) + 1)
	f.txns = append(f.txns, t)
	return t.ID, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, owner string, mode core.SortMode) ([]core.Transaction, error) {
	out := f.owned(owner)
	core.SortTransactions(out, mode)
	return out, nil
}

func (f *fakeStore) ListTransactionsByRange(_ context.Context, owner string, start, end core.Date, mode core.SortMode) ([]core.Transaction, error) {
	f.ranged = true
	f.gotStart, f.gotEnd = start, end
	var out []core.Transaction
	for _, t := range f.owned(owner) {
		if (core.DateRange{Start: start, End: end}).Contains(t.Date) {
			out = append(out, t)
		}
	}
	core.SortTransactions(out, mode)
	return out, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id int64, owner string) (*core.Transaction, error) {
	for _, t := range f.txns {
		if t.ID == id && t.Owner == owner {
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeStore) UpdateTransaction(context.Context, core.Transaction) error { return nil }
func (f *fakeStore) DeleteTransaction(context.Context, int64, string) error    { return nil }

func (f *fakeStore) DeleteAllTransactions(_ context.Context, owner string) error {
	f.deletedAll = owner
	var kept []core.Transaction
	for _, t := range f.txns {
		if t.Owner != owner {
			kept = append(kept, t)
		}
	}
	f.txns = kept
	return nil
}

func (f *fakeStore) GetCurrency(context.Context, string) (string, error) {
	if f.currency == "" {
		return core.DefaultCurrency, nil
	}
	return f.currency, nil
}

func (f *fakeStore) owned(owner string) []core.Transaction {
	var out []core.Transaction
	for _, t := range f.txns {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func seed(t *testing.T, store *fakeStore) {
	t.Helper()
	ctx := context.Background()
	rows := []struct {
		kind   core.Kind
		cat    string
		amount string
		date   string
	}{
		{core.Income, "Salary", "1000.00", "2024-03-01"},
		{core.Expense, "Food", "50.00", "2024-03-10"},
		{core.Expense, "Travel", "120.00", "2024-02-20"},
	}
	for _, r := range rows {
		amt, err := core.ParseAmount(r.amount)
		if err != nil {
			t.Fatalf("parse amount: %v", err)
		}
		_, err = store.AddTransaction(ctx, core.Transaction{
			Owner:    "a@example.com",
			Kind:     r.kind,
			Category: r.cat,
			Amount:   amt,
			Date:     mustDate(t, r.date),
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}
}

func TestListUsesRangeForPresets(t *testing.T) {
	store := &fakeStore{}
	seed(t, store)
	svc := NewTransactionService(store, notify.NewAMQPDispatcher(nil), nil)

	today := mustDate(t, "2024-03-15")
	txns, err := svc.List(context.Background(), "a@example.com", core.RangeMonth, core.SortDateAsc, today)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !store.ranged {
		t.Fatal("expected the ranged list path for a month preset")
	}
	if got := store.gotStart.Format("2006-01-02"); got != "2024-03-01" {
		t.Fatalf("range start = %s", got)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions in March, got %d", len(txns))
	}
}

func TestListAllSkipsRange(t *testing.T) {
	store := &fakeStore{}
	seed(t, store)
	svc := NewTransactionService(store, notify.NewAMQPDispatcher(nil), nil)

	txns, err := svc.List(context.Background(), "a@example.com", core.RangeAll, core.SortDateDesc, mustDate(t, "2024-03-15"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.ranged {
		t.Fatal("all preset must not hit the ranged path")
	}
	if len(txns) != 3 {
		t.Fatalf("expected all 3 transactions, got %d", len(txns))
	}
	if txns[0].Category != "Food" {
		t.Fatalf("expected newest first, got %s", txns[0].Category)
	}
}

func TestDashboardSummaryAndRecent(t *testing.T) {
	store := &fakeStore{}
	seed(t, store)
	svc := NewTransactionService(store, notify.NewAMQPDispatcher(nil), nil)

	d, err := svc.Dashboard(context.Background(), "a@example.com", core.RangeAll, mustDate(t, "2024-03-15"))
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if got := d.Summary.Balance.String(); got != "830.00" {
		t.Fatalf("balance = %s, want 830.00", got)
	}
	if d.Currency != core.DefaultCurrency {
		t.Fatalf("currency = %s", d.Currency)
	}
	if len(d.Recent) != 3 {
		t.Fatalf("recent = %d", len(d.Recent))
	}
}

func TestResetDashboardDeletesAndNotifies(t *testing.T) {
	store := &fakeStore{}
	seed(t, store)
	svc := NewTransactionService(store, notify.NewAMQPDispatcher(nil), nil)

	if err := svc.ResetDashboard(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.deletedAll != "a@example.com" {
		t.Fatalf("delete all hit owner %q", store.deletedAll)
	}
	if len(store.txns) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(store.txns))
	}
}

func TestExportCSVContainsRows(t *testing.T) {
	store := &fakeStore{}
	seed(t, store)
	svc := NewTransactionService(store, notify.NewAMQPDispatcher(nil), nil)

	data, err := svc.ExportCSV(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := string(data)
	for _, want := range []string{"Salary", "1000.00", "Travel", "Date,Category,Remark,Type,Amount"} {
		if !strings.Contains(out, want) {
			t.Fatalf("csv missing %q:\n%s", want, out)
		}
	}
}

func TestVisualizationGroupings(t *testing.T) {
	store := &fakeStore{}
	seed(t, store)
	svc := NewTransactionService(store, notify.NewAMQPDispatcher(nil), nil)

	v, err := svc.Visualization(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("visualization: %v", err)
	}
	if len(v.Monthly) != 2 {
		t.Fatalf("expected 2 monthly buckets, got %d", len(v.Monthly))
	}
	if len(v.ByCategory) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(v.ByCategory))
	}
	if len(v.Weekday) != 7 {
		t.Fatalf("expected 7 weekday slots, got %d", len(v.Weekday))
	}
}

func TestSheetsExportNotConfigured(t *testing.T) {
	svc := NewTransactionService(&fakeStore{}, notify.NewAMQPDispatcher(nil), nil)
	if err := svc.ExportToSheets(context.Background(), "a@example.com"); err == nil {
		t.Fatal("expected error without a sheets exporter")
	}
}
