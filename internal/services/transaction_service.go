// Package services orchestrates the transaction store, the notification
// dispatcher and the report exporters behind the HTTP handlers.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"expenseflow/internal/core"
	"expenseflow/internal/notify"
	"expenseflow/internal/report"
)

// Store is the slice of the repository the service needs.
type Store interface {
	AddTransaction(ctx context.Context, t core.Transaction) (int64, error)
	ListTransactions(ctx context.Context, owner string, mode core.SortMode) ([]core.Transaction, error)
	ListTransactionsByRange(ctx context.Context, owner string, start, end core.Date, mode core.SortMode) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64, owner string) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64, owner string) error
	DeleteAllTransactions(ctx context.Context, owner string) error
	GetCurrency(ctx context.Context, email string) (string, error)
}

// SheetExporter is the optional Google Sheets export target.
type SheetExporter interface {
	Export(ctx context.Context, owner string, txns []core.Transaction) error
}

// TransactionService wires the store to notifications and exports.
type TransactionService struct {
	store      Store
	dispatcher notify.Dispatcher
	sheets     SheetExporter // nil when not configured
}

func NewTransactionService(store Store, dispatcher notify.Dispatcher, sheets SheetExporter) *TransactionService {
	return &TransactionService{store: store, dispatcher: dispatcher, sheets: sheets}
}

// Add records a new transaction.
func (s *TransactionService) Add(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}
	return id, nil
}

// List returns the owner's transactions for a date-filter preset, sorted.
// The preset resolves relative to today; RangeAll lists everything.
func (s *TransactionService) List(ctx context.Context, owner string, preset core.RangePreset, mode core.SortMode, today core.Date) ([]core.Transaction, error) {
	if r, ok := preset.Resolve(today); ok {
		return s.store.ListTransactionsByRange(ctx, owner, r.Start, r.End, mode)
	}
	return s.store.ListTransactions(ctx, owner, mode)
}

// Get fetches one transaction, scoped to its owner.
func (s *TransactionService) Get(ctx context.Context, id int64, owner string) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, id, owner)
}

// Update replaces all mutable fields of an owned transaction.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	return s.store.UpdateTransaction(ctx, t)
}

// Delete removes one owned transaction.
func (s *TransactionService) Delete(ctx context.Context, id int64, owner string) error {
	return s.store.DeleteTransaction(ctx, id, owner)
}

// ResetDashboard wipes the owner's transactions and dispatches the reset
// notification. The email is fire-and-forget.
func (s *TransactionService) ResetDashboard(ctx context.Context, owner string) error {
	if err := s.store.DeleteAllTransactions(ctx, owner); err != nil {
		return fmt.Errorf("reset dashboard: %w", err)
	}
	s.dispatcher.DashboardReset(ctx, owner)
	return nil
}

// Dashboard bundles what the dashboard page shows: totals for the filtered
// window plus the ten most recent transactions and the user's currency.
type Dashboard struct {
	Summary  core.Summary
	Recent   []core.Transaction
	Currency string
}

const recentLimit = 10

func (s *TransactionService) Dashboard(ctx context.Context, owner string, preset core.RangePreset, today core.Date) (*Dashboard, error) {
	txns, err := s.List(ctx, owner, preset, core.SortDateDesc, today)
	if err != nil {
		return nil, fmt.Errorf("dashboard list: %w", err)
	}

	currency, err := s.store.GetCurrency(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("dashboard currency: %w", err)
	}

	recent := txns
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return &Dashboard{
		Summary:  core.Summarize(txns),
		Recent:   recent,
		Currency: currency,
	}, nil
}

// Visualization bundles the grouped series the chart endpoints consume.
// Groupings are re-derived from the full unsorted transaction set.
type Visualization struct {
	Monthly    []core.SeriesPoint
	Daily      []core.SeriesPoint
	ByCategory []core.CategoryAmount
	Weekday    []core.WeekdayAmount
}

func (s *TransactionService) Visualization(ctx context.Context, owner string) (*Visualization, error) {
	txns, err := s.store.ListTransactions(ctx, owner, core.SortNone)
	if err != nil {
		return nil, fmt.Errorf("visualization list: %w", err)
	}
	return &Visualization{
		Monthly:    core.TimeSeries(txns, core.BucketMonthly),
		Daily:      core.TimeSeries(txns, core.BucketDaily),
		ByCategory: core.CategoryBreakdown(txns),
		Weekday:    core.WeekdayPattern(txns),
	}, nil
}

// ExportCSV renders the owner's full report, newest first.
func (s *TransactionService) ExportCSV(ctx context.Context, owner string) ([]byte, error) {
	txns, err := s.store.ListTransactions(ctx, owner, core.SortDateDesc)
	if err != nil {
		return nil, fmt.Errorf("export list: %w", err)
	}
	data, err := report.WriteCSV(owner, txns)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return data, nil
}

// EmailReport renders the report and queues it for email delivery.
func (s *TransactionService) EmailReport(ctx context.Context, owner string) error {
	data, err := s.ExportCSV(ctx, owner)
	if err != nil {
		return err
	}
	s.dispatcher.Report(ctx, owner, data)
	return nil
}

// ExportToSheets appends the report to the configured Google Sheet.
func (s *TransactionService) ExportToSheets(ctx context.Context, owner string) error {
	if s.sheets == nil {
		return fmt.Errorf("sheets export not configured")
	}

	txns, err := s.store.ListTransactions(ctx, owner, core.SortDateDesc)
	if err != nil {
		return fmt.Errorf("export list: %w", err)
	}
	if err := s.sheets.Export(ctx, owner, txns); err != nil {
		return fmt.Errorf("export to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets", "owner", owner, "rows", len(txns))
	return nil
}
