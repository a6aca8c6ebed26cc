package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// amountZeroer is the slice of the repository the reset job needs.
type amountZeroer interface {
	ZeroAllAmounts(ctx context.Context) error
}

// MonthlyReset zeroes every transaction amount at midnight on the first of
// each month, across all users. Rows are kept so categories and remarks
// survive the rollover.
type MonthlyReset struct {
	store amountZeroer
	now   func() time.Time
}

func NewMonthlyReset(store amountZeroer) *MonthlyReset {
	return &MonthlyReset{store: store, now: time.Now}
}

// Run blocks until ctx is cancelled, firing once per month boundary.
func (m *MonthlyReset) Run(ctx context.Context) error {
	for {
		next := nextMonthStart(m.now())
		slog.InfoContext(ctx, "Monthly reset scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(m.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := m.runOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "Monthly reset failed", "error", err)
		}
	}
}

func (m *MonthlyReset) runOnce(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := m.store.ZeroAllAmounts(runCtx); err != nil {
		return fmt.Errorf("zero amounts: %w", err)
	}
	slog.InfoContext(ctx, "Monthly reset completed")
	return nil
}

// nextMonthStart returns midnight on the first day of the month after now,
// in now's location.
func nextMonthStart(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location())
}
